package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked/pkg/consensus"
	"github.com/uhyunpark/hyperlicked/pkg/network"
	"github.com/uhyunpark/hyperlicked/pkg/topology"
	"github.com/uhyunpark/hyperlicked/pkg/util"
)

// Broadcaster hands an envelope to whatever transport carries it to a
// connected client (WebSocket, in practice). The session never imports
// the transport package directly, mirroring the teacher's Hub/Client
// separation between pkg/consensus and pkg/api.
type Broadcaster interface {
	Deliver(sessionID string, nodeID int, payload any)
}

// Persister is the external storage contract a Session uses to survive
// process restarts (C-persistence). Implemented by pkg/store over Pebble.
type Persister interface {
	UpsertSession(snap Snapshot) error
	AppendHistory(sessionID string, item HistoryItem) error
}

// Session is the single-threaded actor owning one simulated cluster, per
// spec.md §5: every mutation runs inside its mailbox goroutine, so no
// field here is ever touched concurrently from outside Run.
type Session struct {
	ID     string
	Config Config
	Status Status

	log   *zap.SugaredLogger
	clock util.Clock
	net   *network.Simulator
	store Persister
	out   Broadcaster

	cmds chan func()
	done chan struct{}

	// Consensus-phase state (spec.md §3).
	phase            consensus.Phase
	phaseStep        int
	currentView      consensus.View
	currentRound     int
	startViewOfRound consensus.View

	nodes       map[int]*consensus.NodeState
	robotStates map[int]*consensus.RobotState
	robot       *consensus.RobotAgent
	tamperer    consensus.Tamperer

	aggregator *consensus.Aggregator
	buffer     *consensus.MessageBuffer

	connectedNodes map[int]bool
	robotNodeIDs   map[int]bool

	messages Messages
	history  []HistoryItem
	result   *ConsensusResult

	lastPrePrepareView *consensus.View
	finalizedView      *consensus.View

	// pendingNewViews collects §4.6 NEW-VIEW reports per target view
	// until the global quorum gate in startNewViewConsensus releases them.
	pendingNewViews map[consensus.View]map[int]consensus.NewViewMsg

	viewTimerGen int
	nextRoundGen int
}

// New constructs a Session in StatusWaiting. Callers must call Run in a
// goroutine before Submit-ing work.
func New(id string, cfg Config, log *zap.SugaredLogger, clock util.Clock, store Persister, out Broadcaster, seed int64) *Session {
	cfg.Normalize()
	s := &Session{
		ID:             id,
		Config:         cfg,
		Status:         StatusWaiting,
		log:            log.With("session", id),
		clock:          clock,
		net:            network.New(id, cfg.MessageDeliveryRate, seed),
		store:          store,
		out:            out,
		cmds:           make(chan func(), 64),
		done:           make(chan struct{}),
		phase:           consensus.PhaseWaiting,
		nodes:           make(map[int]*consensus.NodeState),
		robotStates:     make(map[int]*consensus.RobotState),
		robot:           consensus.NewRobotAgent(),
		tamperer:        consensus.Tamperer{Allowed: cfg.AllowTampering},
		aggregator:      consensus.NewAggregator(),
		buffer:          consensus.NewMessageBuffer(),
		connectedNodes:  make(map[int]bool),
		robotNodeIDs:    make(map[int]bool),
		pendingNewViews: make(map[consensus.View]map[int]consensus.NewViewMsg),
	}
	for i := 0; i < cfg.NodeCount; i++ {
		s.nodes[i] = &consensus.NodeState{}
	}
	for i := 0; i < cfg.RobotNodes && i < cfg.NodeCount; i++ {
		s.robotNodeIDs[i] = true
		s.robotStates[i] = &consensus.RobotState{}
	}
	return s
}

// Run drains the mailbox until ctx is cancelled; Stop does not end it. It
// is the only goroutine ever allowed to touch Session's unexported fields.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(s.done)
			return
		case fn := <-s.cmds:
			fn()
		}
	}
}

// Submit enqueues fn and blocks until it has run inside the actor
// goroutine, mirroring the teacher's Hub.broadcast channel-handoff
// pattern but with a completion signal for request/response callers.
func (s *Session) Submit(fn func(*Session)) {
	ack := make(chan struct{})
	select {
	case s.cmds <- func() { fn(s); close(ack) }:
	case <-s.done:
		return
	}
	select {
	case <-ack:
	case <-s.done:
	}
}

// Stop halts the view-change timer and marks the session stopped. Safe
// to call from outside the actor; it enqueues like any other command.
func (s *Session) Stop() {
	s.Submit(func(s *Session) {
		s.stopViewTimer()
		s.Status = StatusStopped
	})
}

func (s *Session) broadcast(kind string, targets []int, payload any) {
	s.net.CountBroadcast(kind, len(targets))
	for _, id := range targets {
		if s.out != nil && s.connectedNodes[id] {
			if s.net.ShouldDeliver() {
				s.out.Deliver(s.ID, id, payload)
			}
		}
	}
}

func (s *Session) unicast(kind string, target int, payload any) {
	s.net.CountUnicast(kind)
	if s.out != nil && s.connectedNodes[target] {
		if s.net.ShouldDeliver() {
			s.out.Deliver(s.ID, target, payload)
		}
	}
}

// hierarchicalBroadcast implements the two-level fan-out of spec.md §4.5,
// shared by PRE-PREPARE and QC delivery: one hop to groupLeaders (cost
// |groupLeaders|), then each group leader forwards to its own members
// (cost += forwarded targets per group).
func (s *Session) hierarchicalBroadcast(kind string, groupLeaders []int, payload any) {
	s.broadcast(kind, groupLeaders, payload)
	for _, gl := range groupLeaders {
		s.broadcast(kind, topologyMembers(s, gl), payload)
	}
}

// deliverOnly hands payload to targets' transports without touching the
// network simulator's message counter. The Global Leader's own group has
// no separate hop in §4.5's formula — it is the root of the tree, not a
// forwarded branch — so its members receive the payload directly.
func (s *Session) deliverOnly(targets []int, payload any) {
	for _, id := range targets {
		if s.out != nil && s.connectedNodes[id] {
			if s.net.ShouldDeliver() {
				s.out.Deliver(s.ID, id, payload)
			}
		}
	}
}

func (s *Session) topo(nodeID int) topology.Info {
	return topology.Resolve(uint64(s.currentView), nodeID, s.Config.NodeCount, s.Config.BranchCount)
}

func (s *Session) leaderID() int {
	return topology.Leader(uint64(s.currentView), s.Config.NodeCount)
}

func (s *Session) advancePhase() {
	s.phase = consensus.NextPhase(s.phase)
	s.phaseStep++
	s.net.CountPhaseAdvance()
}

func (s *Session) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.UpsertSession(s.snapshotLocked()); err != nil {
		s.log.Warnw("session persist failed", "error", err)
	}
}

func (s *Session) recordHistory(item HistoryItem) {
	s.history = append(s.history, item)
	if s.store == nil {
		return
	}
	if err := s.store.AppendHistory(s.ID, item); err != nil {
		s.log.Warnw("history append failed", "error", err)
	}
}

func (s *Session) logf(format string, args ...any) {
	s.log.Debugf(format, args...)
}

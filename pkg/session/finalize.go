package session

import (
	"time"

	"github.com/uhyunpark/hyperlicked/pkg/consensus"
)

// nextRoundDelay is the pause spec.md §4.11 describes between a round's
// decide and the next round's bootstrap.
const nextRoundDelay = 10 * time.Second

// finalizeRound implements C11: once the decide phase is reached, compute
// the communication-complexity comparison table, append a history entry,
// and report the outcome to connected clients. Grounded on
// original_source/backend/consensus_engine.py's finalize_consensus.
func (s *Session) finalizeRound(decidedValue int) {
	netStats := s.net.Snapshot()
	stats := consensus.ComputeComplexity(s.Config.NodeCount, s.Config.BranchCount, netStats.TotalMessagesSent)

	result := ConsensusResult{
		Status:      "decided",
		Description: describeDecision(decidedValue),
		Stats:       stats,
	}
	s.result = &result
	s.Status = StatusCompleted

	s.recordHistory(HistoryItem{
		Round:       s.currentRound,
		View:        s.currentView,
		Status:      result.Status,
		Description: result.Description,
		Stats:       stats,
		Timestamp:   s.clock.Now(),
	})

	s.deliverOnly(s.allNodeIDs(), result)
	s.stopViewTimer()
	s.persist()
	s.scheduleNextRound()
}

// scheduleNextRound arms the §4.11 next-round bootstrap timer: ~10s
// after finalize, currentRound and currentView both advance and the
// Leader re-proposes, the same generation-counter pattern resetViewTimer
// uses to stay cancellable across repeated decides.
func (s *Session) scheduleNextRound() {
	s.nextRoundGen++
	gen := s.nextRoundGen
	ch := s.clock.After(nextRoundDelay)
	go func() {
		select {
		case <-ch:
			s.onNextRoundTimer(gen)
		case <-s.done:
		}
	}()
}

func (s *Session) onNextRoundTimer(gen int) {
	s.Submit(func(s *Session) {
		if gen != s.nextRoundGen || s.Status != StatusCompleted {
			return
		}
		s.nextRound()
		s.persist()
	})
}

func describeDecision(value int) string {
	if value < 0 {
		return "consensus decided on a tampered value"
	}
	return "consensus reached"
}

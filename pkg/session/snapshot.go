package session

import "time"

// Snapshot is the sanitized, fully-serializable view of a session handed
// to callers and to the persistence layer. It mirrors
// original_source/backend/database.py's _sanitize_session_data: timers,
// channels and mutexes never leave the actor, only plain data does.
type Snapshot struct {
	ID               string                     `json:"id"`
	Config           Config                     `json:"config"`
	Status           Status                     `json:"status"`
	Phase            string                     `json:"phase"`
	PhaseStep        int                        `json:"phaseStep"`
	CurrentView      uint64                     `json:"currentView"`
	CurrentRound     int                        `json:"currentRound"`
	ConnectedNodes   []int                      `json:"connectedNodes"`
	RobotNodeIDs     []int                      `json:"robotNodeIds"`
	Messages         Messages                   `json:"messages"`
	History          []HistoryItem              `json:"history"`
	Result           *ConsensusResult           `json:"consensusResult,omitempty"`
	NetworkStats     map[string]int             `json:"networkStats"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
}

// Snapshot returns a sanitized copy of the session's current state. Safe
// to call only from inside the actor goroutine (see snapshotLocked) or
// via Submit from the outside.
func (s *Session) Snapshot() Snapshot {
	var snap Snapshot
	s.Submit(func(s *Session) {
		snap = s.snapshotLocked()
	})
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	netStats := s.net.Snapshot()
	return Snapshot{
		ID:             s.ID,
		Config:         s.Config,
		Status:         s.Status,
		Phase:          string(s.phase),
		PhaseStep:      s.phaseStep,
		CurrentView:    uint64(s.currentView),
		CurrentRound:   s.currentRound,
		ConnectedNodes: intKeys(s.connectedNodes),
		RobotNodeIDs:   intKeys(s.robotNodeIDs),
		Messages:       s.messages,
		History:        append([]HistoryItem(nil), s.history...),
		Result:         s.result,
		NetworkStats: map[string]int{
			"totalMessagesSent": netStats.TotalMessagesSent,
			"phasesCount":       netStats.PhasesCount,
		},
		UpdatedAt: s.clock.Now(),
	}
}

func intKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	return out
}

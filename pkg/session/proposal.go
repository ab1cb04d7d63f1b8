package session

import "github.com/uhyunpark/hyperlicked/pkg/consensus"

// Start transitions a waiting session into its first round, issuing the
// Global Leader's initial PRE-PREPARE. Grounded on
// original_source/backend/consensus_engine.py's start_consensus, adapted
// to the actor-submit pattern.
func (s *Session) Start() {
	s.Submit(func(s *Session) {
		if s.Status == StatusRunning {
			return
		}
		s.Status = StatusRunning
		s.currentRound = 1
		s.enterView()
		s.persist()
	})
}

// enterView bootstraps a genuine new round (round and view both fresh):
// per-round network accounting resets, then the shared view scratch
// (resetViewScratch) readies phase/robot state/timer for the view. A
// view-change within the same round uses resetViewScratch directly
// instead (viewchange.go's startNewViewConsensus), since §3/the glossary
// require currentRound to stay fixed while only currentView advances.
func (s *Session) enterView() {
	s.startViewOfRound = s.currentView
	s.net.Reset()
	s.resetViewScratch()
	s.replayBuffered()
	s.maybeAutoProposeLeader(s.nodes[s.leaderID()].HighQC)
}

// resetViewScratch resets the per-view bookkeeping spec.md §4.6 requires
// on both a fresh round and a view-change resumption: phase back to
// new-view (then straight to prepare), the outstanding result cleared,
// every robot's vote-state flags reset, and the liveness timer rearmed.
func (s *Session) resetViewScratch() {
	s.phase = consensus.PhaseNewView
	s.result = nil
	for _, rs := range s.robotStates {
		rs.Reset()
	}
	s.resetViewTimer()
	s.advancePhase() // new-view -> prepare
}

// maybeAutoProposeLeader issues the robot Leader's PRE-PREPARE for the
// view just entered, unless the Leader is the configured malicious
// proposer (spec.md §4.8: a malicious robot Leader never emits a
// proposal, letting the view-change timeout drive liveness instead).
func (s *Session) maybeAutoProposeLeader(highQC *consensus.QC) {
	leader := s.leaderID()
	if !s.robotNodeIDs[leader] {
		return
	}
	if s.Config.MaliciousProposer && leader == 0 {
		return
	}
	msg := s.robot.ProposeFor(leader, s.currentView, s.currentRound, s.Config.ProposalValue, highQC)
	s.applyPrePrepare(msg)
}

// replayBuffered drains C7's message buffer for the view just entered,
// applying anything that arrived early while the session was still on a
// lower view.
func (s *Session) replayBuffered() {
	for _, v := range s.buffer.DrainProposals(0, s.currentView) {
		s.applyPrePrepare(v)
	}
	for _, v := range s.buffer.DrainVotes(s.currentView) {
		s.applyVote(v)
	}
}

// SubmitHumanProposal accepts a leader-role client's proposal content,
// the manual counterpart to Start's auto-generated robot proposal.
func (s *Session) SubmitHumanProposal(from int, value int) {
	s.Submit(func(s *Session) {
		if from != s.leaderID() {
			return
		}
		msg := s.robot.ProposeFor(from, s.currentView, s.currentRound, value, s.nodes[from].HighQC)
		msg.IsRobot = false
		s.applyPrePrepare(msg)
	})
}

// nextRound advances to a fresh round after a decide (spec.md §4.11):
// both currentRound and currentView increment, mirroring
// original_source/backend/consensus_engine.py's round rollover. A view
// change alone (viewchange.go) must never call this — it advances only
// currentView, leaving currentRound fixed.
func (s *Session) nextRound() {
	s.currentRound++
	s.currentView++
	s.Status = StatusRunning
	s.enterView()
}

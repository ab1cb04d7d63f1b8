package session

import "github.com/uhyunpark/hyperlicked/pkg/consensus"

// emitRobotVote generates and applies the vote an autonomous node casts
// in reaction to a proposal or QC, per C8. Robots vote exactly once per
// (view, phase): RobotState.Voted tracks that per robot so a rebroadcast
// QC can never double-count a robot's contribution to the same QC round.
func (s *Session) emitRobotVote(robotID, parentID, value int) {
	rs, ok := s.robotStates[robotID]
	if !ok {
		rs = &consensus.RobotState{}
		s.robotStates[robotID] = rs
	}
	rs.ReceivedPrePrepare = true

	switch s.phase {
	case consensus.PhasePrepare, consensus.PhasePreCommit, consensus.PhaseCommit:
		if rs.Voted(s.phase) {
			return
		}
	default:
		return
	}
	msg := s.robot.VoteFor(robotID, parentID, s.currentView, s.currentRound, s.phase, value)
	s.applyVote(msg)
}

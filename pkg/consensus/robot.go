package consensus

import "strconv"

// RobotState tracks one robot node's per-view voting progress (C8),
// mirroring spec.md §3's robotNodeStates{receivedPrePrepare, sentPrepare,
// sentCommit, ...} shape.
type RobotState struct {
	ReceivedPrePrepare bool
	SentPrepare        bool
	SentPreCommit      bool
	SentCommit         bool
}

// Reset clears a robot's vote-state flags, used on view-change and on
// new-round bootstrap.
func (s *RobotState) Reset() {
	*s = RobotState{}
}

// Voted marks phase as cast for this robot and reports whether it had
// already voted that phase, so a rebroadcast QC can never double-count a
// robot's contribution. Phases outside the three vote phases report
// already-voted so callers skip them.
func (s *RobotState) Voted(phase Phase) bool {
	var flag *bool
	switch phase {
	case PhasePrepare:
		flag = &s.SentPrepare
	case PhasePreCommit:
		flag = &s.SentPreCommit
	case PhaseCommit:
		flag = &s.SentCommit
	default:
		return true
	}
	if *flag {
		return true
	}
	*flag = true
	return false
}

// RobotAgent generates the messages autonomous nodes emit in reaction to
// proposals and phase advances (C8). It holds no session state itself;
// callers pass in whatever topology/value context is needed and receive
// back messages to feed through the normal inbound path, mirroring
// original_source/backend/robot_agent.py's "compute, don't send" design.
type RobotAgent struct{}

// NewRobotAgent returns a stateless robot-message generator.
func NewRobotAgent() *RobotAgent { return &RobotAgent{} }

// ProposeFor builds the PRE-PREPARE a robot Leader emits for a view. The
// proposed value is highQC's value when highQC is set, else value.
func (RobotAgent) ProposeFor(leaderID int, view View, round int, value int, highQC *QC) PrePrepareMsg {
	v := value
	if highQC != nil {
		v = highQC.Value
	}
	msg := PrePrepareMsg{Value: v, Phase: PhasePrepare, QC: highQC, IsRobot: true}
	msg.From = leaderID
	msg.To = "group_leaders"
	msg.View = view
	msg.Round = round
	msg.Kind = KindPrePrepare
	return msg
}

// VoteFor builds the vote a robot node sends for the given phase/value,
// addressed to parentID (its topology parent at this view).
func (RobotAgent) VoteFor(robotID, parentID int, view View, round int, phase Phase, value int) VoteMsg {
	msg := VoteMsg{Value: value, Phase: phase, IsRobot: true}
	msg.From = robotID
	msg.To = strconv.Itoa(parentID)
	msg.View = view
	msg.Round = round
	msg.Kind = KindVote
	return msg
}

// IsHonest reports whether nodeID behaves honestly given m faulty nodes
// out of n, mirroring original_source/backend/consensus_engine.py's
// is_honest. When faultyProposer is set, node 0 (the initial Leader) is
// the Byzantine one and honesty shifts by one slot.
func IsHonest(nodeID, n, m int, faultyProposer bool) bool {
	if m == 0 {
		return true
	}
	if faultyProposer {
		if nodeID == 0 {
			return false
		}
		return nodeID <= n-m
	}
	if nodeID == 0 {
		return true
	}
	return nodeID < n-m
}

// Tamperer flips a proposal's value in transit when allowTampering is
// configured and the proposer is dishonest, modeling the
// choose_byzantine_attack event of spec.md §6.
type Tamperer struct {
	Allowed bool
}

// Tamper returns the (possibly altered) value and whether it tampered.
func (t Tamperer) Tamper(proposerHonest bool, value int) (int, bool) {
	if !t.Allowed || proposerHonest {
		return value, false
	}
	return value + 1, true
}

package session

import (
	"github.com/uhyunpark/hyperlicked/pkg/consensus"
	"github.com/uhyunpark/hyperlicked/pkg/topology"
)

// Connect marks nodeID as attached to a live transport. Robot node IDs
// are tracked separately and connect themselves implicitly.
func (s *Session) Connect(nodeID int) {
	s.Submit(func(s *Session) {
		s.connectedNodes[nodeID] = true
		s.persist()
	})
}

// Disconnect marks nodeID as detached without discarding its vote state;
// reconnecting mid-round simply resumes delivery.
func (s *Session) Disconnect(nodeID int) {
	s.Submit(func(s *Session) {
		delete(s.connectedNodes, nodeID)
		s.persist()
	})
}

// HandlePrePrepare dispatches an inbound PRE-PREPARE through the view
// precedence rule of spec.md §4.10, then the SafeNode predicate, and
// fans the accepted proposal out to the node's children.
func (s *Session) HandlePrePrepare(msg consensus.PrePrepareMsg) {
	s.Submit(func(s *Session) {
		if msg.View > s.currentView {
			s.buffer.BufferProposal(0, msg)
			return
		}
		if msg.View < s.currentView {
			return
		}
		s.applyPrePrepare(msg)
	})
}

func (s *Session) applyPrePrepare(msg consensus.PrePrepareMsg) {
	leader := s.leaderID()
	if msg.From != leader {
		s.logf("dropping pre-prepare from non-leader %d at view %d", msg.From, msg.View)
		return
	}

	value := msg.Value
	honest := consensus.IsHonest(msg.From, s.Config.NodeCount, s.Config.FaultyNodes, s.Config.MaliciousProposer)
	tamperedValue, tampered := s.tamperer.Tamper(honest, value)
	if tampered {
		value = tamperedValue
	}

	v := s.currentView
	s.lastPrePrepareView = &v
	s.messages.PrePrepare = append(s.messages.PrePrepare, msg)

	groupLeaders := append([]int{}, s.groupLeaderIDs()...)
	ownGroup := topologyMembers(s, leader)
	s.hierarchicalBroadcast(string(consensus.KindPrePrepare), groupLeaders, msg)
	s.deliverOnly(ownGroup, msg)

	// A replica votes only if its SafeNode predicate accepts the proposal.
	safe := func(id int) bool {
		return consensus.SafeNode(s.nodes[id], msg.View, value, msg.QC)
	}
	for _, gl := range groupLeaders {
		for _, member := range topologyMembers(s, gl) {
			if s.robotNodeIDs[member] && safe(member) {
				s.emitRobotVote(member, gl, value)
			}
		}
		if s.robotNodeIDs[gl] && safe(gl) {
			s.emitRobotVote(gl, leader, value)
		}
	}
	// The Global Leader is also the local head of its own slice: those
	// members have no separate group leader to aggregate through, so
	// they vote straight to the Global Leader (Case B in applyVote).
	for _, member := range ownGroup {
		if s.robotNodeIDs[member] && safe(member) {
			s.emitRobotVote(member, leader, value)
		}
	}
	s.persist()
}

// HandleVote dispatches an inbound vote/GroupVote per the view precedence
// rule, then through the two-case aggregator of spec.md §4.4.
func (s *Session) HandleVote(msg consensus.VoteMsg) {
	s.Submit(func(s *Session) {
		if msg.View > s.currentView {
			s.buffer.BufferVote(msg)
			return
		}
		if msg.View < s.currentView {
			return
		}
		s.applyVote(msg)
	})
}

func (s *Session) applyVote(msg consensus.VoteMsg) {
	s.messages.Vote = append(s.messages.Vote, msg)
	key := consensus.Key{View: msg.View, Phase: msg.Phase, Value: msg.Value}
	leader := s.leaderID()

	targetID, err := parseTarget(msg.To)
	if err != nil {
		return
	}

	if msg.IsGroupVote || targetID == leader {
		res := s.aggregator.HandleGlobalVote(msg.From, targetID, leader, s.Config.NodeCount, key, msg.IsGroupVote, msg.Weight, msg.GroupVoters)
		s.dispatchVoteResult(res, key)
		return
	}

	info := s.topo(msg.From)
	res := s.aggregator.HandleMemberVote(msg.From, info.ParentID, targetID, info.GroupSize, key)
	switch res.Status {
	case consensus.StatusGroupVoteEmitted:
		res.GroupVote.To = nodeLabel(s.leaderID())
		s.deliverOnly([]int{s.leaderID()}, *res.GroupVote)
		global := s.aggregator.HandleGlobalVote(res.GroupVote.From, s.leaderID(), s.leaderID(), s.Config.NodeCount, key, true, res.GroupVote.Weight, res.GroupVote.GroupVoters)
		s.dispatchVoteResult(global, key)
	}
}

func (s *Session) dispatchVoteResult(res consensus.VoteResult, key consensus.Key) {
	if res.Status != consensus.StatusQCGenerated || res.QC == nil {
		return
	}
	qcMsg := consensus.QCMsg{
		Phase:     key.Phase,
		NextPhase: consensus.NextPhase(key.Phase),
		QC:        *res.QC,
	}
	qcMsg.From = s.leaderID()
	qcMsg.To = "group_leaders"
	qcMsg.View = s.currentView
	qcMsg.Round = s.currentRound
	qcMsg.Kind = consensus.KindQC
	s.applyQC(qcMsg)
}

// HandleQC drops a QC whose view is not the current view (QCs are never
// buffered) and otherwise applies the QC effects: safety-state update and
// phase advance, fanned out to all nodes.
func (s *Session) HandleQC(msg consensus.QCMsg) {
	s.Submit(func(s *Session) {
		if msg.View > s.currentView {
			return
		}
		if msg.View < s.currentView {
			return
		}
		s.applyQC(msg)
	})
}

func (s *Session) applyQC(msg consensus.QCMsg) {
	s.messages.QC = append(s.messages.QC, msg)
	for _, node := range s.nodes {
		node.UpdatePrepareQC(&msg.QC)
		node.UpdateLockedQC(&msg.QC)
	}

	leader := s.leaderID()
	groupLeaders := s.groupLeaderIDs()
	ownGroup := topologyMembers(s, leader)
	s.hierarchicalBroadcast(string(consensus.KindQC), groupLeaders, msg)
	s.deliverOnly(ownGroup, msg)

	s.advancePhase()
	s.resetViewTimer()

	if s.phase == consensus.PhaseDecide {
		if s.finalizedView != nil && *s.finalizedView == s.currentView {
			return
		}
		v := s.currentView
		s.finalizedView = &v
		s.finalizeRound(msg.QC.Value)
		return
	}

	for _, gl := range groupLeaders {
		if s.robotNodeIDs[gl] {
			s.emitRobotVote(gl, leader, msg.QC.Value)
		}
		for _, member := range topologyMembers(s, gl) {
			if s.robotNodeIDs[member] {
				s.emitRobotVote(member, gl, msg.QC.Value)
			}
		}
	}
	for _, member := range ownGroup {
		if s.robotNodeIDs[member] {
			s.emitRobotVote(member, leader, msg.QC.Value)
		}
	}
}

// HandleNewView implements the liveness path of spec.md §4.6: a replica
// reporting its highQC to the next Leader after a timeout. It feeds the
// same pendingNewViews collection and global-quorum gate the internal
// timeout path (viewchange.go) drives.
func (s *Session) HandleNewView(msg consensus.NewViewMsg) {
	s.Submit(func(s *Session) {
		newLeader := topology.Leader(uint64(msg.View), s.Config.NodeCount)
		s.recordNewView(msg.View, newLeader, msg)
		s.startNewViewConsensus(msg.View)
	})
}

func (s *Session) groupLeaderIDs() []int {
	return groupLeadersFor(s.currentView, s.Config.NodeCount, s.Config.BranchCount)
}

func (s *Session) allNodeIDs() []int {
	ids := make([]int, 0, s.Config.NodeCount)
	for i := 0; i < s.Config.NodeCount; i++ {
		ids = append(ids, i)
	}
	return ids
}

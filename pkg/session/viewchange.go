package session

import (
	"time"

	"github.com/uhyunpark/hyperlicked/pkg/consensus"
	"github.com/uhyunpark/hyperlicked/pkg/httpapi/metrics"
)

// viewChangeTimeout is the liveness window of spec.md §4.6: if no QC
// advances the round within this window, the session forces a view
// change rather than hanging forever on a silent or crashed Leader.
const viewChangeTimeout = 8 * time.Second

func (s *Session) resetViewTimer() {
	s.stopViewTimer()
	if s.Status != StatusRunning {
		return
	}
	s.viewTimerGen++
	gen := s.viewTimerGen
	ch := s.clock.After(viewChangeTimeout)
	go func() {
		select {
		case <-ch:
			s.onViewTimeout(gen)
		case <-s.done:
		}
	}()
}

func (s *Session) stopViewTimer() {
	s.viewTimerGen++
}

// onViewTimeout fires the liveness path of spec.md §4.6: every node (not
// just connected ones) reports its highQC as a NEW-VIEW to the next
// Leader. currentRound stays fixed — only currentView advances, since a
// single round may span multiple views under View Change.
func (s *Session) onViewTimeout(gen int) {
	s.Submit(func(s *Session) {
		if gen != s.viewTimerGen || s.Status != StatusRunning {
			return
		}
		metrics.ViewChanges.WithLabelValues(s.ID).Inc()
		oldView := s.currentView
		newView := oldView + 1
		s.currentView = newView
		newLeader := s.leaderID()

		for id := 0; id < s.Config.NodeCount; id++ {
			node := s.nodes[id]
			if node == nil {
				continue
			}
			msg := consensus.NewViewMsg{OldView: oldView, HighQC: node.HighQC}
			msg.From = id
			msg.To = nodeLabel(newLeader)
			msg.View = newView
			msg.Kind = consensus.KindNewView
			s.recordNewView(newView, newLeader, msg)
		}

		s.recordHistory(HistoryItem{
			Round:       s.currentRound,
			View:        oldView,
			Status:      "view_change",
			Description: "view-change timeout, advancing view",
			Timestamp:   s.clock.Now(),
		})
		s.startNewViewConsensus(newView)
	})
}

// recordNewView stores one node's NEW-VIEW report for view into
// pendingNewViews, per spec.md §4.6 step 3: one message counted per
// node, except the new Leader's own (it never reports to itself).
func (s *Session) recordNewView(view consensus.View, newLeader int, msg consensus.NewViewMsg) {
	votes, ok := s.pendingNewViews[view]
	if !ok {
		votes = make(map[int]consensus.NewViewMsg)
		s.pendingNewViews[view] = votes
	}
	if _, dup := votes[msg.From]; dup {
		return
	}
	votes[msg.From] = msg
	s.messages.NewView = append(s.messages.NewView, msg)
	if msg.From != newLeader {
		s.net.CountUnicast(string(consensus.KindNewView))
	}
}

// startNewViewConsensus implements spec.md §4.6 step 6: once
// pendingNewViews[view] reaches the global quorum, pick the highest-view
// highQC among the reports (ties broken toward the lowest reporting node
// ID), apply it, and resume the view — proposing immediately if the new
// Leader is a robot.
func (s *Session) startNewViewConsensus(view consensus.View) {
	if view != s.currentView {
		return
	}
	votes := s.pendingNewViews[view]
	if len(votes) < consensus.GlobalQuorum(s.Config.NodeCount) {
		return
	}

	var highQC *consensus.QC
	for id := 0; id < s.Config.NodeCount; id++ {
		msg, ok := votes[id]
		if !ok || msg.HighQC == nil {
			continue
		}
		if highQC == nil || msg.HighQC.View > highQC.View {
			highQC = msg.HighQC
		}
	}
	if highQC != nil {
		for _, n := range s.nodes {
			n.UpdatePrepareQC(highQC)
		}
	}
	delete(s.pendingNewViews, view)

	s.startViewOfRound = view
	s.resetViewScratch()
	s.replayBuffered()
	s.maybeAutoProposeLeader(highQC)
}

package session

import (
	"context"
	"testing"

	"github.com/uhyunpark/hyperlicked/pkg/util"
)

// TestSessionAllRobotRoundReachesDecide drives a full round with every
// node played by the robot agent end to end: propose, vote, aggregate,
// form QCs, and finalize. It is the regression test for a completeness
// bug where the Global Leader's own local group members were never
// engaged, which silently capped the reachable global-quorum weight
// below threshold and stalled every round before it could decide.
func TestSessionAllRobotRoundReachesDecide(t *testing.T) {
	cfg := Config{NodeCount: 4, BranchCount: 2, RobotNodes: 4, MessageDeliveryRate: 100, ProposalValue: 7}
	s := New("round-1", cfg, testLogger(t), util.RealClock{}, nil, nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)

	for i := 0; i < cfg.NodeCount; i++ {
		s.Connect(i)
	}

	s.Start()

	snap := s.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected an all-robot round to reach status=completed, got %s (phase=%s)", snap.Status, snap.Phase)
	}
	if snap.Result == nil {
		t.Fatal("expected a consensus result once the round completes")
	}
	if len(snap.History) == 0 {
		t.Fatal("expected finalizeRound to append a history entry")
	}
}

// TestSessionAllRobotRoundReachesDecideLargerCluster exercises a cluster
// large enough to have two non-root groups, so both HandleMemberVote
// (Case A) and HandleGlobalVote (Case B) fire for groups other than the
// Global Leader's own.
func TestSessionAllRobotRoundReachesDecideLargerCluster(t *testing.T) {
	cfg := Config{NodeCount: 9, BranchCount: 3, RobotNodes: 9, MessageDeliveryRate: 100, ProposalValue: 3}
	s := New("round-2", cfg, testLogger(t), util.RealClock{}, nil, nil, 2)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)

	for i := 0; i < cfg.NodeCount; i++ {
		s.Connect(i)
	}

	s.Start()

	snap := s.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected an all-robot round to reach status=completed, got %s (phase=%s)", snap.Status, snap.Phase)
	}
}

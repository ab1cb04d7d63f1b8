package session

import (
	"context"
	"testing"

	"github.com/uhyunpark/hyperlicked/pkg/consensus"
	"github.com/uhyunpark/hyperlicked/pkg/util"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := New("t1", Config{NodeCount: 4, RobotNodes: 4}, testLogger(t), util.RealClock{}, nil, nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	return s
}

func TestSessionConnectDisconnectTracksConnectedNodes(t *testing.T) {
	s := newTestSession(t)

	s.Connect(0)
	s.Connect(1)

	snap := s.Snapshot()
	if len(snap.ConnectedNodes) != 2 {
		t.Fatalf("expected 2 connected nodes, got %v", snap.ConnectedNodes)
	}

	s.Disconnect(0)
	snap = s.Snapshot()
	if len(snap.ConnectedNodes) != 1 || snap.ConnectedNodes[0] != 1 {
		t.Fatalf("expected only node 1 connected after disconnect, got %v", snap.ConnectedNodes)
	}
}

func TestSessionSnapshotStartsWaiting(t *testing.T) {
	s := newTestSession(t)
	snap := s.Snapshot()
	if snap.Status != StatusWaiting {
		t.Fatalf("expected a fresh session to start in status=waiting, got %s", snap.Status)
	}
	if snap.Phase != string(consensus.PhaseWaiting) {
		t.Fatalf("expected fresh session phase to be %q, got %q", consensus.PhaseWaiting, snap.Phase)
	}
}

package session

import (
	"testing"

	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked/pkg/util"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	return zap.NewNop().Sugar()
}

func TestConfigNormalizeAppliesDefaults(t *testing.T) {
	cfg := Config{NodeCount: 4, MessageDeliveryRate: -1}
	cfg.Normalize()
	if cfg.BranchCount != 2 {
		t.Errorf("expected default branchCount=2, got %d", cfg.BranchCount)
	}
	if cfg.MessageDeliveryRate != 100 {
		t.Errorf("expected default messageDeliveryRate=100, got %d", cfg.MessageDeliveryRate)
	}
}

func TestConfigNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{NodeCount: 4, BranchCount: 3, MessageDeliveryRate: 50}
	cfg.Normalize()
	if cfg.BranchCount != 3 || cfg.MessageDeliveryRate != 50 {
		t.Fatalf("Normalize should not override explicit values, got %+v", cfg)
	}
}

func TestConfigNormalizePreservesExplicitZeroDeliveryRate(t *testing.T) {
	cfg := Config{NodeCount: 4, MessageDeliveryRate: 0}
	cfg.Normalize()
	if cfg.MessageDeliveryRate != 0 {
		t.Fatalf("Normalize should preserve an explicit drop-everything rate of 0, got %d", cfg.MessageDeliveryRate)
	}
}

func TestManagerCreateGetDeleteList(t *testing.T) {
	m := NewManager(testLogger(t), util.RealClock{}, nil, nil)

	sess := m.Create("s1", Config{NodeCount: 4, RobotNodes: 4})
	if sess.ID != "s1" {
		t.Fatalf("expected session id s1, got %s", sess.ID)
	}

	got, ok := m.Get("s1")
	if !ok || got != sess {
		t.Fatal("expected Get to return the created session")
	}

	snaps := m.List()
	if len(snaps) != 1 || snaps[0].ID != "s1" {
		t.Fatalf("expected List to contain one snapshot for s1, got %+v", snaps)
	}

	if err := m.Delete("s1"); err != nil {
		t.Fatalf("unexpected error deleting session: %v", err)
	}
	if _, ok := m.Get("s1"); ok {
		t.Fatal("expected session to be gone after Delete")
	}
}

func TestManagerDeleteUnknownSessionErrors(t *testing.T) {
	m := NewManager(testLogger(t), util.RealClock{}, nil, nil)
	if err := m.Delete("missing"); err == nil {
		t.Fatal("expected an error deleting an unknown session")
	}
}

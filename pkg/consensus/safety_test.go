package consensus

import "testing"

func TestSafeNodeAllowsAnyProposalWithNoLock(t *testing.T) {
	n := &NodeState{}
	if !SafeNode(n, 5, 1, nil) {
		t.Fatal("expected SafeNode to allow any proposal when lockedQC is nil")
	}
}

func TestSafeNodeRejectsStaleViewWithoutExtendingQC(t *testing.T) {
	n := &NodeState{}
	n.UpdateLockedQC(&QC{Phase: PhaseCommit, View: 10, Value: 7})

	if SafeNode(n, 9, 99, nil) {
		t.Fatal("expected SafeNode to reject a lower-view proposal carrying a different value")
	}
}

func TestSafeNodeAllowsHigherViewRegardlessOfValue(t *testing.T) {
	n := &NodeState{}
	n.UpdateLockedQC(&QC{Phase: PhaseCommit, View: 10, Value: 7})

	if !SafeNode(n, 11, 42, nil) {
		t.Fatal("expected SafeNode to allow a strictly higher view")
	}
}

func TestSafeNodeAllowsQCThatExtendsLock(t *testing.T) {
	n := &NodeState{}
	n.UpdateLockedQC(&QC{Phase: PhaseCommit, View: 10, Value: 7})

	extending := &QC{Phase: PhasePrepare, View: 12, Value: 7}
	if !SafeNode(n, 9, 7, extending) {
		t.Fatal("expected SafeNode to allow a proposal whose QC extends the lock")
	}
}

func TestUpdateLockedQCIgnoresNonCommitPhase(t *testing.T) {
	n := &NodeState{}
	n.UpdateLockedQC(&QC{Phase: PhasePrepare, View: 5, Value: 1})
	if n.LockedQC != nil {
		t.Fatal("expected non-commit QC to leave lockedQC nil")
	}
}

func TestUpdateLockedQCNeverRegresses(t *testing.T) {
	n := &NodeState{}
	n.UpdateLockedQC(&QC{Phase: PhaseCommit, View: 10, Value: 1})
	n.UpdateLockedQC(&QC{Phase: PhaseCommit, View: 5, Value: 2})
	if n.LockedQC.View != 10 {
		t.Fatalf("expected lockedQC to stay at view 10, got %d", n.LockedQC.View)
	}
}

func TestNextPhaseSequence(t *testing.T) {
	seq := []Phase{PhaseNewView, PhasePrepare, PhasePreCommit, PhaseCommit, PhaseDecide, PhaseDecide}
	p := PhaseNewView
	for _, want := range seq[1:] {
		p = NextPhase(p)
		if p != want {
			t.Fatalf("expected phase %s, got %s", want, p)
		}
	}
}

func TestGlobalQuorumIsTwoFPlusOne(t *testing.T) {
	cases := map[int]int{1: 1, 4: 3, 7: 5, 10: 7}
	for n, want := range cases {
		if got := GlobalQuorum(n); got != want {
			t.Errorf("GlobalQuorum(%d) = %d, want %d", n, got, want)
		}
	}
}

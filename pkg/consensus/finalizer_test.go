package consensus

import "testing"

func TestComputeComplexityMarksCurrentAlgorithm(t *testing.T) {
	stats := ComputeComplexity(7, 2, 40)
	if !stats.ComplexityComparison.DoubleHotStuff.IsCurrent {
		t.Fatal("expected the double-layer row to be marked current")
	}
	if stats.ComplexityComparison.DoubleHotStuff.Actual != 40 {
		t.Fatalf("expected actual messages to be carried through unchanged, got %d", stats.ComplexityComparison.DoubleHotStuff.Actual)
	}
}

func TestComputeComplexityTheoreticalFormulas(t *testing.T) {
	const n, k = 7, 2
	stats := ComputeComplexity(n, k, 1)
	cmp := stats.ComplexityComparison

	if cmp.DoubleHotStuff.Theoretical != 8*n {
		t.Errorf("double-layer theoretical = %d, want %d", cmp.DoubleHotStuff.Theoretical, 8*n)
	}
	if cmp.PBFTPure.Theoretical != 2*n*n {
		t.Errorf("pbft theoretical = %d, want %d", cmp.PBFTPure.Theoretical, 2*n*n)
	}
	if cmp.HotStuffPure.Theoretical != 4*n {
		t.Errorf("hotstuff theoretical = %d, want %d", cmp.HotStuffPure.Theoretical, 4*n)
	}
}

func TestRatioGuardsAgainstZeroActual(t *testing.T) {
	if got := ratio(100, 0); got != 0 {
		t.Fatalf("expected ratio(100, 0) = 0, got %f", got)
	}
}

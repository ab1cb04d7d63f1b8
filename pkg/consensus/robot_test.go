package consensus

import "testing"

func TestIsHonestNoFaults(t *testing.T) {
	if !IsHonest(3, 7, 0, false) {
		t.Fatal("expected every node honest when faultyNodes=0")
	}
}

func TestIsHonestTrailingNodesAreFaulty(t *testing.T) {
	const n, m = 7, 2
	for id := 0; id < n; id++ {
		want := id < n-m
		if got := IsHonest(id, n, m, false); got != want {
			t.Errorf("IsHonest(%d, %d, %d, false) = %v, want %v", id, n, m, got, want)
		}
	}
}

func TestIsHonestMaliciousProposerFlipsLeader(t *testing.T) {
	if IsHonest(0, 7, 1, true) {
		t.Fatal("expected node 0 to be dishonest when faultyProposer is set")
	}
}

func TestTamperOnlyFlipsDishonestProposals(t *testing.T) {
	tamperer := Tamperer{Allowed: true}

	if _, tampered := tamperer.Tamper(true, 5); tampered {
		t.Fatal("expected no tampering for an honest proposer")
	}
	value, tampered := tamperer.Tamper(false, 5)
	if !tampered || value == 5 {
		t.Fatalf("expected tampering to alter the value, got value=%d tampered=%v", value, tampered)
	}
}

func TestTamperDisabledNeverFlips(t *testing.T) {
	tamperer := Tamperer{Allowed: false}
	value, tampered := tamperer.Tamper(false, 5)
	if tampered || value != 5 {
		t.Fatalf("expected no tampering when disabled, got value=%d tampered=%v", value, tampered)
	}
}

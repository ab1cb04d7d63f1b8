package consensus

import "testing"

func TestHandleMemberVoteRejectsWrongTarget(t *testing.T) {
	a := NewAggregator()
	key := Key{View: 1, Phase: PhasePrepare, Value: 5}
	res := a.HandleMemberVote(1, 0, 2, 4, key)
	if res.Status != StatusInvalidTarget {
		t.Fatalf("expected invalid_target, got %s", res.Status)
	}
}

func TestHandleMemberVoteEmitsGroupVoteAtLocalQuorum(t *testing.T) {
	a := NewAggregator()
	key := Key{View: 1, Phase: PhasePrepare, Value: 5}
	groupSize := 4 // localQuorum = 2*((4-1)/3)+1 = 3

	var last VoteResult
	for _, voter := range []int{1, 2, 3} {
		last = a.HandleMemberVote(voter, 0, 0, groupSize, key)
	}
	if last.Status != StatusGroupVoteEmitted {
		t.Fatalf("expected group_vote_generated at quorum, got %s", last.Status)
	}
	if last.GroupVote.Weight != 3 {
		t.Fatalf("expected group vote weight 3, got %d", last.GroupVote.Weight)
	}
}

func TestHandleGlobalVoteEmitsQCOnceAtQuorum(t *testing.T) {
	a := NewAggregator()
	key := Key{View: 1, Phase: PhasePrepare, Value: 5}
	const n = 7 // globalQuorum = 2*((7-1)/3)+1 = 5

	var qcCount int
	for id := 0; id < n; id++ {
		res := a.HandleGlobalVote(id, 0, 0, n, key, false, 0, nil)
		if res.Status == StatusQCGenerated {
			qcCount++
		}
	}
	if qcCount != 1 {
		t.Fatalf("expected exactly one QC emitted across the pool, got %d", qcCount)
	}
}

func TestHandleGlobalVoteCountsGroupVoteWeight(t *testing.T) {
	a := NewAggregator()
	key := Key{View: 1, Phase: PhasePrepare, Value: 5}
	const n = 7 // quorum 5

	res := a.HandleGlobalVote(1, 0, 0, n, key, true, 3, []int{1, 2, 3})
	if res.Status != StatusPending {
		t.Fatalf("expected pending after weight 3 of 5, got %s", res.Status)
	}
	res = a.HandleGlobalVote(4, 0, 0, n, key, true, 2, []int{4, 5})
	if res.Status != StatusQCGenerated {
		t.Fatalf("expected qc_generated once weight reaches quorum, got %s", res.Status)
	}
	if len(res.QC.Signers) != 5 {
		t.Fatalf("expected 5 distinct signers in QC, got %d", len(res.QC.Signers))
	}
}

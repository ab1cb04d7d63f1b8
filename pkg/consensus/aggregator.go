package consensus

import "sort"

// VoteStatus is the outcome of feeding one vote through the aggregator.
type VoteStatus string

const (
	StatusInvalidTarget    VoteStatus = "invalid_target"
	StatusPending          VoteStatus = "pending"
	StatusGroupVoteEmitted VoteStatus = "group_vote_generated"
	StatusQCGenerated      VoteStatus = "qc_generated"
	StatusIgnored          VoteStatus = "ignored"
)

// contribution is one entry in a global vote pool: either a direct vote
// (weight 1) or a GroupVote (weight = intra-group quorum size).
type contribution struct {
	from    int
	weight  int
	voterIDs []int
}

type globalPool struct {
	totalWeight   int
	contributions []contribution
}

// VoteResult reports what the aggregator did with one inbound vote.
type VoteResult struct {
	Status    VoteStatus
	GroupVote *VoteMsg
	QC        *QC
}

// Aggregator implements C4: the two-level vote pool. It is not
// goroutine-safe on its own; callers (the session actor) must serialize
// access, per spec.md §5.
type Aggregator struct {
	groupVoters map[GroupKey]map[int]struct{}
	globalPools map[Key]*globalPool
	qcEmitted   map[Key]bool
}

// NewAggregator returns an empty two-level vote aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		groupVoters: make(map[GroupKey]map[int]struct{}),
		globalPools: make(map[Key]*globalPool),
		qcEmitted:   make(map[Key]bool),
	}
}

// HandleMemberVote implements Case A of spec.md §4.4: a Member voting to
// its Group Leader. voter is the sender, groupLeaderID the voter's Group
// Leader at this view and target the vote's declared recipient;
// groupSize is the actual size of the voter's group at this view. Exactly
// one GroupVote is emitted per group key, when the local quorum is first
// reached; later member votes are recorded but emit nothing.
func (a *Aggregator) HandleMemberVote(voter, groupLeaderID, target, groupSize int, key Key) VoteResult {
	if target != groupLeaderID {
		return VoteResult{Status: StatusInvalidTarget}
	}

	gk := GroupKey{Key: key, GroupLeaderID: groupLeaderID}
	set, ok := a.groupVoters[gk]
	if !ok {
		set = make(map[int]struct{})
		a.groupVoters[gk] = set
	}
	if _, dup := set[voter]; dup {
		return VoteResult{Status: StatusPending}
	}
	set[voter] = struct{}{}

	if len(set) != LocalQuorum(groupSize) {
		return VoteResult{Status: StatusPending}
	}

	voters := sortedKeys(set)
	gv := &VoteMsg{
		Value:       key.Value,
		Phase:       key.Phase,
		IsGroupVote: true,
		Weight:      len(voters),
		GroupVoters: voters,
	}
	gv.From = groupLeaderID
	gv.View = key.View
	gv.Kind = KindVote
	return VoteResult{Status: StatusGroupVoteEmitted, GroupVote: gv}
}

// HandleGlobalVote implements Case B of spec.md §4.4: a Group Leader or
// root voting to the Global Leader, or a GroupVote being fed back in
// recursively. n is the cluster size used for the global quorum
// threshold.
func (a *Aggregator) HandleGlobalVote(from, target, globalLeaderID, n int, key Key, isGroupVote bool, weight int, voterIDs []int) VoteResult {
	if target != globalLeaderID {
		return VoteResult{Status: StatusInvalidTarget}
	}
	pool, ok := a.globalPools[key]
	if !ok {
		pool = &globalPool{}
		a.globalPools[key] = pool
	}

	w := weight
	ids := voterIDs
	if !isGroupVote {
		w = 1
		ids = []int{from}
	}
	pool.totalWeight += w
	pool.contributions = append(pool.contributions, contribution{from: from, weight: w, voterIDs: ids})

	if a.qcEmitted[key] {
		// Tie-break: already produced a QC for this key; the vote is
		// recorded above for bookkeeping, never produces a second QC (I6).
		return VoteResult{Status: StatusPending}
	}

	threshold := GlobalQuorum(n)
	if pool.totalWeight < threshold {
		return VoteResult{Status: StatusPending}
	}

	signerSet := make(map[int]struct{})
	for _, c := range pool.contributions {
		for _, id := range c.voterIDs {
			signerSet[id] = struct{}{}
		}
	}

	qc := &QC{
		Phase:        key.Phase,
		View:         key.View,
		Value:        key.Value,
		Signers:      sortedKeys(signerSet),
		TotalWeight:  pool.totalWeight,
		IsMultiLayer: true,
	}
	a.qcEmitted[key] = true
	return VoteResult{Status: StatusQCGenerated, QC: qc}
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

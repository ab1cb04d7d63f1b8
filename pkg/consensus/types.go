// Package consensus implements the Double-Layer HotStuff state machine:
// phases, quorum certificates, SafeNode, per-node safety state and the
// two-level vote aggregation pipeline. It holds no timers and performs no
// I/O; the session actor (pkg/session) drives it.
package consensus

import "time"

// View is HotStuff's monotone logical clock.
type View uint64

// Phase is a position in the new-view -> prepare -> pre-commit -> commit
// -> decide succession.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseNewView   Phase = "new-view"
	PhasePrepare   Phase = "prepare"
	PhasePreCommit Phase = "pre-commit"
	PhaseCommit    Phase = "commit"
	PhaseDecide    Phase = "decide"
	PhaseCompleted Phase = "completed"
)

// NextPhase implements spec invariant I5: new-view -> prepare ->
// pre-commit -> commit -> decide -> decide (sink). Any other phase maps
// to prepare, mirroring the Python original's permissive default.
func NextPhase(p Phase) Phase {
	switch p {
	case PhaseNewView:
		return PhasePrepare
	case PhasePrepare:
		return PhasePreCommit
	case PhasePreCommit:
		return PhaseCommit
	case PhaseCommit:
		return PhaseDecide
	case PhaseDecide:
		return PhaseDecide
	default:
		return PhasePrepare
	}
}

// QC is a Quorum Certificate: proof that >= quorum distinct nodes voted
// for (Phase, View, Value). Identity is (Phase, View, Value) per I6.
type QC struct {
	Phase        Phase `json:"phase"`
	View         View  `json:"view"`
	Value        int   `json:"value"`
	Signers      []int `json:"signers"`
	TotalWeight  int   `json:"totalWeight"`
	IsMultiLayer bool  `json:"isMultiLayer"`
}

// Key identifies a QC's (phase, view, value) bucket.
type Key struct {
	View  View
	Phase Phase
	Value int
}

// GroupKey additionally scopes a vote pool to its intra-group leader.
type GroupKey struct {
	Key
	GroupLeaderID int
}

// QCExtends implements the SafeNode "extends" stand-in of spec.md §4.2:
// a nil locked QC is trivially extended; a nil candidate never extends
// anything; otherwise the candidate must strictly outrank the base in
// view and carry the same value.
func QCExtends(candidate, base *QC) bool {
	if base == nil {
		return true
	}
	if candidate == nil {
		return false
	}
	return candidate.View > base.View && candidate.Value == base.Value
}

// NodeState is the per-node persistent Safety state (§3/§4.3).
type NodeState struct {
	LockedQC    *QC
	PrepareQC   *QC
	HighQC      *QC
	CurrentView View
}

// UpdatePrepareQC advances prepareQC/highQC on any strictly-higher-view
// QC, regardless of phase.
func (n *NodeState) UpdatePrepareQC(qc *QC) {
	if qc == nil {
		return
	}
	if n.PrepareQC == nil || qc.View > n.PrepareQC.View {
		cp := *qc
		n.PrepareQC = &cp
		hp := *qc
		n.HighQC = &hp
	}
}

// UpdateLockedQC advances lockedQC only for commit-phase QCs with a
// strictly higher view than the current lock (I4: non-decreasing).
func (n *NodeState) UpdateLockedQC(qc *QC) {
	if qc == nil || qc.Phase != PhaseCommit {
		return
	}
	if n.LockedQC == nil || qc.View > n.LockedQC.View {
		cp := *qc
		n.LockedQC = &cp
	}
}

// SafeNode implements the HotStuff Safety predicate of spec.md §4.2.
func SafeNode(n *NodeState, proposalView View, proposalValue int, proposalQC *QC) bool {
	if n.LockedQC == nil {
		return true
	}
	if proposalView > n.LockedQC.View {
		return true
	}
	if proposalQC != nil {
		return QCExtends(proposalQC, n.LockedQC)
	}
	return proposalValue == n.LockedQC.Value && proposalView >= n.LockedQC.View
}

// GlobalQuorum is the 2f+1 threshold over n nodes.
func GlobalQuorum(n int) int {
	if n < 1 {
		return 1
	}
	f := (n - 1) / 3
	return 2*f + 1
}

// LocalQuorum is the 2f_local+1 threshold within a group of the given size.
func LocalQuorum(groupSize int) int {
	if groupSize < 1 {
		return 1
	}
	fLocal := (groupSize - 1) / 3
	return 2*fLocal + 1
}

// MessageKind tags the sum type of messages the engine exchanges.
type MessageKind string

const (
	KindPrePrepare MessageKind = "pre_prepare"
	KindVote       MessageKind = "vote"
	KindQC         MessageKind = "qc"
	KindNewView    MessageKind = "new_view"
)

// Header is the common envelope shared by all message kinds.
type Header struct {
	From      int         `json:"from"`
	To        string      `json:"to"` // numeric node id or "group_leaders"
	View      View        `json:"view"`
	Round     int         `json:"round"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"type"`
}

// PrePrepareMsg is the Global Leader's proposal broadcast.
type PrePrepareMsg struct {
	Header
	Value    int   `json:"value"`
	Phase    Phase `json:"phase"`
	QC       *QC   `json:"qc,omitempty"`
	IsRobot  bool  `json:"isRobot"`
	Tampered bool  `json:"tampered"`
}

// VoteMsg is a replica's vote, or an aggregated GroupVote when
// IsGroupVote is set.
type VoteMsg struct {
	Header
	Value       int   `json:"value"`
	Phase       Phase `json:"phase"`
	IsGroupVote bool  `json:"isGroupVote,omitempty"`
	Weight      int   `json:"weight,omitempty"`
	GroupVoters []int `json:"groupVoters,omitempty"`
	GroupID     int   `json:"groupId,omitempty"`
	IsRobot     bool  `json:"isRobot"`
}

// QCMsg is the Global Leader's QC broadcast advancing the phase.
type QCMsg struct {
	Header
	Phase     Phase `json:"phase"`
	NextPhase Phase `json:"nextPhase"`
	QC        QC    `json:"qc"`
}

// NewViewMsg carries a replica's highQC into the next Leader on timeout.
type NewViewMsg struct {
	Header
	OldView View `json:"oldView"`
	HighQC  *QC  `json:"highQC"`
}

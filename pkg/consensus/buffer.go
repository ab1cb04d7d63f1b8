package consensus

// MessageBuffer implements C7: two compartments holding messages whose
// view is ahead of the session's current view, replayed on view entry.
// No TTL beyond the drain itself (spec.md §4.7).
type MessageBuffer struct {
	votes     map[View][]VoteMsg
	proposals map[int]map[View][]PrePrepareMsg // nodeID -> view -> proposals
}

// NewMessageBuffer returns an empty buffer.
func NewMessageBuffer() *MessageBuffer {
	return &MessageBuffer{
		votes:     make(map[View][]VoteMsg),
		proposals: make(map[int]map[View][]PrePrepareMsg),
	}
}

// BufferVote defers a vote whose view is ahead of the current view.
func (b *MessageBuffer) BufferVote(v VoteMsg) {
	b.votes[v.View] = append(b.votes[v.View], v)
}

// BufferProposal defers a proposal addressed to nodeID whose view is
// ahead of the current view.
func (b *MessageBuffer) BufferProposal(nodeID int, p PrePrepareMsg) {
	perNode, ok := b.proposals[nodeID]
	if !ok {
		perNode = make(map[View][]PrePrepareMsg)
		b.proposals[nodeID] = perNode
	}
	perNode[p.View] = append(perNode[p.View], p)
}

// DrainVotes removes and returns all buffered votes for a view.
func (b *MessageBuffer) DrainVotes(v View) []VoteMsg {
	out := b.votes[v]
	delete(b.votes, v)
	return out
}

// DrainProposals removes and returns buffered proposals addressed to
// nodeID for a view.
func (b *MessageBuffer) DrainProposals(nodeID int, v View) []PrePrepareMsg {
	perNode, ok := b.proposals[nodeID]
	if !ok {
		return nil
	}
	out := perNode[v]
	delete(perNode, v)
	return out
}

// Package session implements the Session Driver (C10): the actor that
// owns one simulated cluster's state and orchestrates the topology
// resolver, safety predicates, vote aggregator, proposal/QC pipeline,
// view-change engine, message buffer, robot agents and network
// simulator behind a single serialized mailbox, per spec.md §5.
package session

import (
	"time"

	"github.com/uhyunpark/hyperlicked/pkg/consensus"
)

// Status is the session's externally visible lifecycle state.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

// Config is SessionConfig from spec.md §6.
type Config struct {
	NodeCount           int  `json:"nodeCount"`
	BranchCount         int  `json:"branchCount"`
	ProposalValue       int  `json:"proposalValue"`
	ProposalContent     string `json:"proposalContent"`
	FaultyNodes         int  `json:"faultyNodes"`
	RobotNodes          int  `json:"robotNodes"`
	Topology            string `json:"topology"`
	MaliciousProposer   bool `json:"maliciousProposer"`
	AllowTampering      bool `json:"allowTampering"`
	MessageDeliveryRate int  `json:"messageDeliveryRate"`
}

// Normalize fills in the defaults spec.md §6 names for optional fields.
// MessageDeliveryRate 0 is a legitimate "drop everything" rate, distinct
// from an unset field: only a negative value (the sentinel callers that
// can't distinguish "absent" from "zero" should send, e.g. httpapi's
// handleCreateSession) is coerced to the default.
func (c *Config) Normalize() {
	if c.BranchCount < 1 {
		c.BranchCount = 2
	}
	if c.MessageDeliveryRate < 0 {
		c.MessageDeliveryRate = 100
	}
}

// Messages is the append-only log partitioned by kind, per spec.md §3.
type Messages struct {
	PrePrepare []consensus.PrePrepareMsg `json:"prePrepare"`
	Vote       []consensus.VoteMsg       `json:"vote"`
	QC         []consensus.QCMsg         `json:"qc"`
	NewView    []consensus.NewViewMsg    `json:"newView"`
}

// HistoryItem is one round's finalize record, appended on decide.
type HistoryItem struct {
	Round       int                     `json:"round"`
	View        consensus.View          `json:"view"`
	Status      string                  `json:"status"`
	Description string                  `json:"description"`
	Stats       consensus.ConsensusStats `json:"stats"`
	Timestamp   time.Time               `json:"timestamp"`
}

// ConsensusResult is the outcome reported to clients on finalize.
type ConsensusResult struct {
	Status      string                  `json:"status"`
	Description string                  `json:"description"`
	Stats       consensus.ConsensusStats `json:"stats"`
}

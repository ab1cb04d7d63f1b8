package httpapi

import "github.com/uhyunpark/hyperlicked/pkg/session"

// CreateSessionRequest is the payload for POST /api/sessions.
type CreateSessionRequest struct {
	session.Config
}

// CreateSessionResponse echoes the new session's id and initial snapshot.
type CreateSessionResponse struct {
	ID       string           `json:"id"`
	Snapshot session.Snapshot `json:"snapshot"`
}

// AssignNodeRequest assigns a connecting client to a node slot.
type AssignNodeRequest struct {
	NodeID int `json:"nodeId"`
}

// ProposeRequest carries a human leader's proposal content.
type ProposeRequest struct {
	NodeID int `json:"nodeId"`
	Value  int `json:"value"`
}

// ErrorResponse is returned for all REST errors, matching the teacher's
// pkg/api/types.go ErrorResponse shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// wsInbound is the envelope for every client -> server WebSocket event,
// per spec.md §7's inbound event list.
type wsInbound struct {
	Op    string `json:"op"`
	Value int    `json:"value,omitempty"`
}

// wsOutbound is the envelope for every server -> client WebSocket event.
type wsOutbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

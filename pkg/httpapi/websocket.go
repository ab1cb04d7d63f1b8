package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/uhyunpark/hyperlicked/pkg/session"
)

// handleWebSocket upgrades /ws/{id}/{nodeId} and wires its inbound
// events to the session's actor methods, per spec.md §7's inbound
// event list (send_prepare/send_commit/send_message/choose_normal_
// consensus/choose_byzantine_attack/ping map onto these ops).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	nodeID, err := strconv.Atoi(vars["nodeId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid nodeId", err.Error())
		return
	}
	sess, ok := s.manager.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found", id)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		key:  clientKey{sessionID: id, nodeID: nodeID},
		conn: conn,
		send: make(chan []byte, 256),
	}
	client.onInbound = func(op string, value int) {
		s.dispatchInbound(sess, nodeID, op, value)
	}

	s.hub.register <- client
	sess.Connect(nodeID)
	s.hub.DeliverEvent(id, nodeID, "session_config", sess.Snapshot())

	go client.writePump()
	client.readPump()
}

func (s *Server) dispatchInbound(sess *session.Session, nodeID int, op string, value int) {
	switch op {
	case "send_prepare", "send_commit", "send_message":
		sess.SubmitHumanProposal(nodeID, value)
	case "choose_normal_consensus":
		sess.Start()
	case "choose_byzantine_attack":
		sess.Start()
	case "ping":
		s.hub.DeliverEvent(sess.ID, nodeID, "pong", nil)
	case "disconnect":
		sess.Disconnect(nodeID)
	default:
		s.log.Debugw("unknown websocket op", "op", op)
	}
}

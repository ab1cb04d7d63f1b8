// Package network simulates the lossy, star/tree delivery layer of the
// Double-Layer HotStuff cluster: a per-send delivery-probability gate and
// a message counter, per spec.md §4.9. It performs no real I/O — the
// session actor decides, from ShouldDeliver, whether to hand an envelope
// to a client transport.
package network

import (
	"math/rand"
	"sync"

	"github.com/uhyunpark/hyperlicked/pkg/httpapi/metrics"
)

// Simulator gates delivery and counts outbound sends for one session.
// The counter increments for every logical unicast scheduled, online or
// offline: the delivery gate only suppresses the handoff to a client
// socket, never the accounting (spec.md §4.9 "design decision").
type Simulator struct {
	mu            sync.Mutex
	sessionID     string
	deliveryRate  int // whole percent, 0-100
	rng           *rand.Rand
	totalSent     int
	phasesCount   int
}

// New returns a simulator for one session with the given
// messageDeliveryRate (0-100; 100 disables the gate).
func New(sessionID string, deliveryRate int, seed int64) *Simulator {
	return &Simulator{
		sessionID:    sessionID,
		deliveryRate: deliveryRate,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// ShouldDeliver draws r in [0,100) and delivers iff r < deliveryRate.
func (s *Simulator) ShouldDeliver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deliveryRate >= 100 {
		return true
	}
	r := s.rng.Intn(100)
	return r < s.deliveryRate
}

// CountUnicast records one logical unicast toward the total message
// counter, regardless of whether it was actually delivered.
func (s *Simulator) CountUnicast(kind string) {
	s.mu.Lock()
	s.totalSent++
	s.mu.Unlock()
	metrics.MessagesSent.WithLabelValues(s.sessionID, kind).Inc()
}

// CountBroadcast records n logical unicasts (a hierarchical broadcast
// step fanning out to n targets).
func (s *Simulator) CountBroadcast(kind string, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.totalSent += n
	s.mu.Unlock()
	metrics.MessagesSent.WithLabelValues(s.sessionID, kind).Add(float64(n))
}

// CountPhaseAdvance records one phase transition for operator visibility.
func (s *Simulator) CountPhaseAdvance() {
	s.mu.Lock()
	s.phasesCount++
	s.mu.Unlock()
	metrics.PhasesAdvanced.WithLabelValues(s.sessionID).Inc()
}

// Stats is a snapshot of this session's network counters.
type Stats struct {
	TotalMessagesSent int `json:"totalMessagesSent"`
	PhasesCount       int `json:"phasesCount"`
}

// Snapshot returns the current counters.
func (s *Simulator) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{TotalMessagesSent: s.totalSent, PhasesCount: s.phasesCount}
}

// Reset zeroes the counters for a new consensus round (the message log
// itself is not cleared, per spec.md §4.11 -- only these counters are
// per-round scratch).
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalSent = 0
	s.phasesCount = 0
}

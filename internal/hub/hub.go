// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hub fans live session events out to connected WebSocket clients.
// Each live session owns one Hub: a role-tagged registry of subscribers that
// the engine broadcasts to, or addresses individually by participant or by
// presenter.
package hub

import (
	"sync"

	"github.com/Roadmvn/quizforge/internal/metrics"
)

// Role distinguishes the presenter's connection from a player's.
type Role int

const (
	RolePresenter Role = iota
	RoleParticipant
)

// outboxCap bounds how far a subscriber can lag before the hub gives up on
// it; a slow consumer must not stall fan-out to everyone else.
const outboxCap = 32

// Subscriber is one live WebSocket connection attached to a session's hub.
type Subscriber struct {
	Role          Role
	ParticipantID string // empty for RolePresenter
	Nickname      string // empty for RolePresenter
	outbox        chan []byte
}

// Outbox is the channel a connection's write pump drains to push frames to
// the socket. The hub never touches the socket directly.
func (s *Subscriber) Outbox() <-chan []byte {
	return s.outbox
}

// Hub is a per-session, mutex-guarded subscriber registry.
type Hub struct {
	mu      sync.Mutex
	members map[*Subscriber]struct{}
}

// New creates an empty Hub ready for use.
func New() *Hub {
	return &Hub{members: make(map[*Subscriber]struct{})}
}

// Attach registers a new subscriber and returns it; the caller starts a
// goroutine draining Outbox() into the live connection.
func (h *Hub) Attach(role Role, participantID, nickname string) *Subscriber {
	sub := &Subscriber{
		Role:          role,
		ParticipantID: participantID,
		Nickname:      nickname,
		outbox:        make(chan []byte, outboxCap),
	}
	h.mu.Lock()
	h.members[sub] = struct{}{}
	h.mu.Unlock()
	metrics.ConnectedSubscribers.Inc()
	return sub
}

// Detach removes a subscriber and closes its outbox. Safe to call more than
// once or on an unknown subscriber.
func (h *Hub) Detach(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[sub]; !ok {
		return
	}
	delete(h.members, sub)
	close(sub.outbox)
	metrics.ConnectedSubscribers.Dec()
}

// snapshot copies the current member set so fan-out never holds h.mu while
// sending, matching the original's lock-then-iterate-then-detach-on-failure
// broadcast shape.
func (h *Hub) snapshot() []*Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Subscriber, 0, len(h.members))
	for s := range h.members {
		out = append(out, s)
	}
	return out
}

// send attempts a non-blocking delivery. A full outbox means the subscriber
// is too far behind; it is detached rather than allowed to stall the rest
// of the broadcast.
func (h *Hub) send(sub *Subscriber, payload []byte) {
	select {
	case sub.outbox <- payload:
	default:
		h.Detach(sub)
	}
}

// Reply delivers payload to a single subscriber outside of a broadcast, e.g.
// a direct error or acknowledgement in response to that subscriber's own
// inbound frame. It goes through the same outbox as every other send so the
// connection's write pump remains the only goroutine ever writing to the
// socket.
func (h *Hub) Reply(sub *Subscriber, payload []byte) {
	h.send(sub, payload)
}

// Broadcast delivers payload to every attached subscriber regardless of role.
func (h *Hub) Broadcast(payload []byte) {
	for _, sub := range h.snapshot() {
		h.send(sub, payload)
	}
}

// ToPresenter delivers payload only to the RolePresenter subscriber, if attached.
func (h *Hub) ToPresenter(payload []byte) {
	for _, sub := range h.snapshot() {
		if sub.Role == RolePresenter {
			h.send(sub, payload)
		}
	}
}

// ToParticipant delivers payload to the subscriber for a specific participant,
// if currently attached (a participant may be offline between reconnects).
func (h *Hub) ToParticipant(participantID string, payload []byte) {
	for _, sub := range h.snapshot() {
		if sub.Role == RoleParticipant && sub.ParticipantID == participantID {
			h.send(sub, payload)
		}
	}
}

// ParticipantCount returns how many distinct participant connections are
// attached (a reconnecting participant still counts once per live socket).
func (h *Hub) ParticipantCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for s := range h.members {
		if s.Role == RoleParticipant {
			n++
		}
	}
	return n
}

// CloseAll detaches every subscriber, used when a session finishes.
func (h *Hub) CloseAll() {
	for _, sub := range h.snapshot() {
		h.Detach(sub)
	}
}

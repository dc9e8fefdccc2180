// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"errors"
	"sync"

	"github.com/Roadmvn/quizforge/internal/metrics"
	"github.com/Roadmvn/quizforge/internal/store"
)

// Registry is the process-wide, single-writer-disciplined map from session
// id to its actor. The registry's own mutex guards only the map; all
// session-state mutation happens inside the actor it hands back.
type Registry struct {
	mu     sync.Mutex
	actors map[string]*Actor
	store  *store.Store
}

// NewRegistry creates an empty Registry backed by st.
func NewRegistry(st *store.Store) *Registry {
	return &Registry{actors: make(map[string]*Actor), store: st}
}

// Actor returns the live actor for a session, loading it from the Durable
// Store and spawning its goroutine on first access.
func (r *Registry) Actor(sessionID string) (*Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.actors[sessionID]; ok {
		return a, nil
	}

	session, err := r.store.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	participants, err := r.store.ListParticipantsBySession(sessionID)
	if err != nil {
		return nil, err
	}

	a := newActor(session, r.store, len(participants))
	r.actors[sessionID] = a
	metrics.ActiveSessions.Inc()
	return a, nil
}

// Remove tears down a session's actor, closing its mailbox and detaching any
// remaining subscribers. Used when a session is deleted outright.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	a, ok := r.actors[sessionID]
	if ok {
		delete(r.actors, sessionID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	a.hub.CloseAll()
	close(a.mailbox)
	metrics.ActiveSessions.Dec()
}

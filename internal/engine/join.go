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
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Roadmvn/quizforge/internal/hub"
	"github.com/Roadmvn/quizforge/internal/store"
)

// JoinResult carries the participant identity a successful (or idempotent
// rejoin) join resolves to.
type JoinResult struct {
	Participant *store.Participant
	Rejoined    bool
}

// mintParticipantToken produces an opaque, URL-safe token with at least 48
// bytes of entropy.
func mintParticipantToken() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint participant token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Join admits a participant by nickname, enforcing the rejoin/reject rules
// Serialized on the actor so a concurrent start_game cannot race a
// join's status check.
func (a *Actor) Join(nickname string) (JoinResult, error) {
	var result JoinResult
	var retErr error
	a.do(func() {
		result, retErr = a.joinLocked(nickname)
	})
	return result, retErr
}

func (a *Actor) joinLocked(nickname string) (JoinResult, error) {
	if a.status == store.StatusFinished {
		return JoinResult{}, ErrSessionFinished
	}

	existing, err := a.store.GetParticipantByNickname(a.id, nickname)
	if err == nil {
		if a.status == store.StatusActive || a.status == store.StatusRevealing {
			return JoinResult{Participant: existing, Rejoined: true}, nil
		}
		return JoinResult{}, ErrNicknameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return JoinResult{}, err
	}

	if a.status == store.StatusActive || a.status == store.StatusRevealing {
		return JoinResult{}, ErrSessionStarted
	}

	token, err := mintParticipantToken()
	if err != nil {
		return JoinResult{}, err
	}
	participant, err := a.store.CreateParticipant(a.id, nickname, token)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return JoinResult{}, ErrNicknameTaken
		}
		return JoinResult{}, err
	}
	a.participantCount++

	a.hub.ToPresenter(a.send(participantEventMsg{
		Type:             TypeParticipantJoined,
		ParticipantID:    participant.ID,
		Nickname:         participant.Nickname,
		ParticipantCount: a.participantCount,
	}))

	return JoinResult{Participant: participant}, nil
}

// Attach registers a newly authenticated stream with the session's hub and,
// for a late-joining participant, replays the late-joiner catch-up sequence
// so the reconnecting client resumes current state without a
// broadcast that would also redundantly reach everyone else.
func (a *Actor) Attach(role hub.Role, participantID, nickname string) *hub.Subscriber {
	var sub *hub.Subscriber
	a.do(func() {
		sub = a.hub.Attach(role, participantID, nickname)
		if role != hub.RoleParticipant {
			return
		}
		a.hub.ToPresenter(a.send(participantEventMsg{
			Type:             TypeParticipantConnected,
			ParticipantID:    participantID,
			Nickname:         nickname,
			ParticipantCount: a.hub.ParticipantCount(),
		}))
		if a.status != store.StatusActive && a.status != store.StatusRevealing {
			return
		}
		quiz, err := a.loadQuiz()
		if err != nil || a.currentQuestionIdx >= len(quiz.Questions) {
			slog.Error("engine: load quiz for late-joiner sync failed", "session", a.id, "error", err)
			return
		}
		a.hub.ToParticipant(participantID, a.send(gameStartedMsg{Type: TypeGameStarted, TotalQuestions: len(quiz.Questions)}))
		if a.status == store.StatusRevealing {
			a.hub.ToParticipant(participantID, a.buildRevealPayload(quiz))
		} else {
			a.hub.ToParticipant(participantID, a.buildNewQuestionPayload(quiz, a.currentQuestionIdx))
		}
	})
	return sub
}

// Detach removes a stream from the hub and, for a participant, notifies the
// presenter. Called whenever a connection closes for any reason.
func (a *Actor) Detach(sub *hub.Subscriber) {
	a.do(func() {
		a.hub.Detach(sub)
		if sub.Role != hub.RoleParticipant {
			return
		}
		a.hub.ToPresenter(a.send(participantEventMsg{
			Type:             TypeParticipantDisconnected,
			ParticipantID:    sub.ParticipantID,
			Nickname:         sub.Nickname,
			ParticipantCount: a.hub.ParticipantCount(),
		}))
	})
}

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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Roadmvn/quizforge/internal/hub"
	"github.com/Roadmvn/quizforge/internal/store"
)

// newTestStore opens a file-backed SQLite store with migrations applied,
// isolated per test in its own t.TempDir.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(dir + "/quizforge.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// seedQuiz creates a presenter and a quiz with the given per-question
// (timeLimit, correctIdx) pairs, two answers each.
func seedQuiz(t *testing.T, st *store.Store, specs ...struct {
	TimeLimit  int
	CorrectIdx int
}) (*store.User, *store.Quiz) {
	t.Helper()
	user, err := st.CreateUser("presenter@example.com", "hash", "Presenter")
	require.NoError(t, err)

	questions := make([]store.Question, len(specs))
	for i, spec := range specs {
		questions[i] = store.Question{
			Text:      "question",
			Order:     i,
			TimeLimit: spec.TimeLimit,
			Answers: []store.Answer{
				{Text: "A", Order: 0, IsCorrect: spec.CorrectIdx == 0},
				{Text: "B", Order: 1, IsCorrect: spec.CorrectIdx == 1},
			},
		}
	}
	quiz, err := st.CreateQuiz(user.ID, "Quiz", "", questions)
	require.NoError(t, err)
	return user, quiz
}

// attachParticipant registers a fake participant connection on the actor
// and returns its subscriber for draining broadcasts in tests.
func attachParticipant(a *Actor, participantID, nickname string) *hub.Subscriber {
	return a.Attach(hub.RoleParticipant, participantID, nickname)
}

func attachPresenter(a *Actor) *hub.Subscriber {
	return a.Attach(hub.RolePresenter, "", "")
}

// drain reads every currently-buffered message off a subscriber's outbox
// without blocking past what's already been sent.
func drain(t *testing.T, sub *hub.Subscriber) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		select {
		case msg, ok := <-sub.Outbox():
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

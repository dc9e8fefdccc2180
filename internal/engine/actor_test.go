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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Roadmvn/quizforge/internal/store"
)

func unmarshalType(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func newTestActor(t *testing.T, st *store.Store, quiz *store.Quiz, owner *store.User) *Actor {
	t.Helper()
	session, err := st.CreateSession(quiz.ID, owner.ID)
	require.NoError(t, err)
	return newActor(session, st, 0)
}

// oneQuestionSpec is shorthand for seedQuiz's variadic spec argument.
func oneQuestionSpec(timeLimit, correctIdx int) struct {
	TimeLimit  int
	CorrectIdx int
} {
	return struct {
		TimeLimit  int
		CorrectIdx int
	}{TimeLimit: timeLimit, CorrectIdx: correctIdx}
}

func TestStartGame_LobbyToActive_BroadcastsGameStartedThenNewQuestion(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	sub := attachPresenter(a)

	a.StartGame()

	msgs := drain(t, sub)
	require.Len(t, msgs, 2)

	first := unmarshalType(t, msgs[0])
	require.Equal(t, TypeGameStarted, first["type"])

	second := unmarshalType(t, msgs[1])
	require.Equal(t, TypeNewQuestion, second["type"])
	require.Equal(t, float64(0), second["question_idx"])

	answers := second["answers"].([]any)
	require.NotEmpty(t, answers)
	_, hasIsCorrect := answers[0].(map[string]any)["is_correct"]
	require.False(t, hasIsCorrect, "new_question answers must never carry is_correct")

	require.Equal(t, store.StatusActive, a.status)
	require.Equal(t, 0, a.currentQuestionIdx)
}

func TestStartGame_RejectedUnlessLobby(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	a.StartGame()
	sub := attachPresenter(a)
	drain(t, sub)

	a.StartGame() // already active: no-op
	require.Empty(t, drain(t, sub))
}

func TestNextQuestion_RejectedPastLastQuestion(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	a.StartGame() // idx=0, only question
	sub := attachPresenter(a)
	drain(t, sub)

	a.NextQuestion() // idx+1=1 >= total(1): rejected
	require.Empty(t, drain(t, sub))
	require.Equal(t, 0, a.currentQuestionIdx)
}

func TestRevealAnswer_RejectedFromLobby(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	sub := attachPresenter(a)

	a.RevealAnswer()
	require.Empty(t, drain(t, sub))
	require.Equal(t, store.StatusLobby, a.status)
}

func TestRevealAnswer_ReissuingWhileRevealingReemits(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	a.StartGame()
	a.RevealAnswer()
	sub := attachPresenter(a)
	drain(t, sub)

	a.RevealAnswer()
	msgs := drain(t, sub)
	require.Len(t, msgs, 1)
	m := unmarshalType(t, msgs[0])
	require.Equal(t, TypeAnswerRevealed, m["type"])
	require.Equal(t, store.StatusRevealing, a.status)
}

func TestEndGame_IdempotentAfterFirstApplication(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	a.StartGame()
	a.EndGame()
	require.Equal(t, store.StatusFinished, a.status)

	a.EndGame() // second call: rejected, no further side effects
	require.Equal(t, store.StatusFinished, a.status)
}

func TestEndToEnd_TwoParticipantsTwoQuestions(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0), oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)

	resA, err := a.Join("alice")
	require.NoError(t, err)
	resB, err := a.Join("bob")
	require.NoError(t, err)

	a.StartGame()
	require.True(t, quiz.Questions[0].Answers[0].IsCorrect)
	correctAnswer := quiz.Questions[0].Answers[0].ID

	// Simulate both participants answering 3s after the question was sent.
	a.do(func() { a.questionSentAt = time.Now().Add(-3 * time.Second) })

	rA := a.SubmitAnswer(resA.Participant.ID, correctAnswer)
	rB := a.SubmitAnswer(resB.Participant.ID, correctAnswer)

	require.True(t, rA.IsCorrect)
	require.InDelta(t, 950, rA.PointsAwarded, 5)
	require.Equal(t, rA.PointsAwarded, rB.PointsAwarded, "identical correct answers at the same elapsed time must score identically")

	a.RevealAnswer()
	lb := a.currentLeaderboardLocked()
	require.Len(t, lb, 2)
	require.Equal(t, lb[0].Score, lb[1].Score, "expected a tie after matching answers")

	a.NextQuestion()
	q2 := quiz.Questions[1]

	rA2 := a.SubmitAnswer(resA.Participant.ID, q2.Answers[0].ID) // correct
	rB2 := a.SubmitAnswer(resB.Participant.ID, q2.Answers[1].ID) // incorrect

	require.True(t, rA2.IsCorrect)
	require.GreaterOrEqual(t, rA2.PointsAwarded, 500)
	require.False(t, rB2.IsCorrect)
	require.Zero(t, rB2.PointsAwarded)

	a.RevealAnswer()
	a.EndGame()

	finalLB := a.currentLeaderboardLocked()
	require.Len(t, finalLB, 2)
	require.Equal(t, resA.Participant.ID, finalLB[0].ParticipantID, "alice answered both questions correctly and should lead")
	require.Equal(t, store.StatusFinished, a.status)
}

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
)

func TestSubmitAnswer_SilentlyDroppedWhenNotActive(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	join, err := a.Join("alice")
	require.NoError(t, err)
	// Still in lobby: status != active.

	result := a.SubmitAnswer(join.Participant.ID, quiz.Questions[0].Answers[0].ID)
	require.True(t, result.Silent)
}

func TestSubmitAnswer_LateSubmissionAfterRevealIsSilentlyDropped(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()
	a.RevealAnswer()

	result := a.SubmitAnswer(join.Participant.ID, quiz.Questions[0].Answers[0].ID)
	require.True(t, result.Silent)
}

func TestSubmitAnswer_InvalidAnswerIDRejected(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0), oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame() // current question is Q1 (idx 0)

	// Submit an answer id belonging to Q2 while current question is Q1.
	result := a.SubmitAnswer(join.Participant.ID, quiz.Questions[1].Answers[0].ID)
	require.Equal(t, "Invalid answer", result.Reject)
}

func TestSubmitAnswer_EmptyAnswerIDRejected(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()

	result := a.SubmitAnswer(join.Participant.ID, "")
	require.Equal(t, "Invalid answer", result.Reject)
}

func TestSubmitAnswer_SecondSubmissionRejectedAsAlreadyAnswered(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()

	first := a.SubmitAnswer(join.Participant.ID, quiz.Questions[0].Answers[0].ID)
	require.Empty(t, first.Reject)

	second := a.SubmitAnswer(join.Participant.ID, quiz.Questions[0].Answers[1].ID)
	require.Equal(t, "already answered", second.Reject)

	participant, err := st.GetParticipant(join.Participant.ID)
	require.NoError(t, err)
	require.Equal(t, first.PointsAwarded, participant.Score, "score must not change on a rejected duplicate submission")
}

func TestSubmitAnswer_ScoreAccumulatesAcrossQuestions(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0), oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()

	r1 := a.SubmitAnswer(join.Participant.ID, quiz.Questions[0].Answers[0].ID)
	require.True(t, r1.IsCorrect)

	a.RevealAnswer()
	a.NextQuestion()

	r2 := a.SubmitAnswer(join.Participant.ID, quiz.Questions[1].Answers[0].ID)
	require.True(t, r2.IsCorrect)
	require.Equal(t, r1.PointsAwarded+r2.PointsAwarded, r2.TotalScore)
}

func TestSubmitAnswer_AnswerReceivedNotifiesPresenterWithAnsweredCount(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()

	presenterSub := attachPresenter(a)
	drain(t, presenterSub)

	a.SubmitAnswer(join.Participant.ID, quiz.Questions[0].Answers[0].ID)

	msgs := drain(t, presenterSub)
	require.Len(t, msgs, 1)
	m := unmarshalType(t, msgs[0])
	require.Equal(t, TypeAnswerReceived, m["type"])
	require.Equal(t, float64(1), m["answered_count"])
	require.Equal(t, join.Participant.ID, m["participant_id"])
}

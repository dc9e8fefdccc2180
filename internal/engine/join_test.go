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

func TestJoin_DuplicateNicknameInLobbyIsRejected(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)

	_, err := a.Join("alice")
	require.NoError(t, err)

	_, err = a.Join("alice")
	require.ErrorIs(t, err, ErrNicknameTaken)
}

func TestJoin_RejoinWithSameNicknameWhileActiveReturnsSameIdentity(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)

	first, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()

	second, err := a.Join("alice")
	require.NoError(t, err)
	require.True(t, second.Rejoined)
	require.Equal(t, first.Participant.ID, second.Participant.ID)
	require.Equal(t, first.Participant.Token, second.Participant.Token)
}

func TestJoin_NewNicknameRejectedOnceSessionStarted(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	a.StartGame()

	_, err := a.Join("latecomer")
	require.ErrorIs(t, err, ErrSessionStarted)
}

func TestJoin_RejectedOnceFinished(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)
	a.StartGame()
	a.EndGame()

	_, err := a.Join("alice")
	require.ErrorIs(t, err, ErrSessionFinished)
}

func TestAttach_LateJoinerDuringRevealingReceivesRevealPayload(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)

	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()
	a.RevealAnswer()

	sub := attachParticipant(a, join.Participant.ID, join.Participant.Nickname)
	msgs := drain(t, sub)
	require.Len(t, msgs, 2)

	first := unmarshalType(t, msgs[0])
	require.Equal(t, TypeGameStarted, first["type"])

	second := unmarshalType(t, msgs[1])
	require.Equal(t, TypeAnswerRevealed, second["type"], "late joiner during revealing must get the reveal payload, not new_question")
	answers := second["answers"].([]any)
	_, hasIsCorrect := answers[0].(map[string]any)["is_correct"]
	require.True(t, hasIsCorrect, "answer_revealed must carry is_correct")
}

func TestAttach_LateJoinerDuringActiveGetsNewQuestionWithoutCorrectness(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)

	join, err := a.Join("alice")
	require.NoError(t, err)
	a.StartGame()

	sub := attachParticipant(a, join.Participant.ID, join.Participant.Nickname)
	msgs := drain(t, sub)
	require.Len(t, msgs, 2)
	second := unmarshalType(t, msgs[1])
	require.Equal(t, TypeNewQuestion, second["type"])
}

func TestDetach_NotifiesPresenterOfDisconnect(t *testing.T) {
	st := newTestStore(t)
	owner, quiz := seedQuiz(t, st, oneQuestionSpec(30, 0))
	a := newTestActor(t, st, quiz, owner)

	join, err := a.Join("alice")
	require.NoError(t, err)

	presenterSub := attachPresenter(a)
	participantSub := attachParticipant(a, join.Participant.ID, join.Participant.Nickname)
	drain(t, presenterSub)

	a.Detach(participantSub)
	msgs := drain(t, presenterSub)
	require.Len(t, msgs, 1)
	m := unmarshalType(t, msgs[0])
	require.Equal(t, TypeParticipantDisconnected, m["type"])
}

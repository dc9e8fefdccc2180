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
	"errors"
	"log/slog"
	"strconv"

	"github.com/Roadmvn/quizforge/internal/metrics"
	"github.com/Roadmvn/quizforge/internal/store"
)

// SubmitResult is the outcome of a submit_answer attempt, used by the
// WebSocket layer to reply to the submitting participant only.
type SubmitResult struct {
	// Reject is non-empty when the submission was rejected without a
	// broadcast; Silent means no reply at all
	// (late submission after reveal) rather than an error payload.
	Reject string
	Silent bool

	IsCorrect     bool
	PointsAwarded int
	TotalScore    int
}

// SubmitAnswer validates and scores a participant's answer to the current
// question, serialized on the session actor so the "current question"
// observed here matches what mark_question_sent measured against.
func (a *Actor) SubmitAnswer(participantID, answerID string) SubmitResult {
	var result SubmitResult
	a.do(func() {
		result = a.submitAnswerLocked(participantID, answerID)
	})
	return result
}

func (a *Actor) submitAnswerLocked(participantID, answerID string) SubmitResult {
	if a.status != store.StatusActive {
		return SubmitResult{Silent: true}
	}
	if answerID == "" {
		return SubmitResult{Reject: "Invalid answer"}
	}

	quiz, err := a.loadQuiz()
	if err != nil {
		slog.Error("engine: load quiz for submit_answer failed", "session", a.id, "error", err)
		return SubmitResult{Reject: "Invalid answer"}
	}
	if a.currentQuestionIdx < 0 || a.currentQuestionIdx >= len(quiz.Questions) {
		return SubmitResult{Reject: "Invalid answer"}
	}
	question := quiz.Questions[a.currentQuestionIdx]

	var matched *store.Answer
	for i := range question.Answers {
		if question.Answers[i].ID == answerID {
			matched = &question.Answers[i]
			break
		}
	}
	if matched == nil {
		return SubmitResult{Reject: "Invalid answer"}
	}

	elapsed := clamp(a.elapsedSinceQuestionLocked(), 0, float64(question.TimeLimit))
	points := score(matched.IsCorrect, elapsed, question.TimeLimit)

	_, err = a.store.InsertResponse(participantID, question.ID, matched.ID, matched.IsCorrect, elapsed, points)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return SubmitResult{Reject: "already answered"}
		}
		slog.Error("engine: insert response failed", "session", a.id, "error", err)
		return SubmitResult{Reject: "Invalid answer"}
	}

	if err := a.store.IncrementScore(participantID, points); err != nil {
		slog.Error("engine: increment score failed", "session", a.id, "error", err)
	}

	participant, err := a.store.GetParticipant(participantID)
	totalScore := points
	if err == nil {
		totalScore = participant.Score
	}

	answered, err := a.store.CountResponsesForQuestion(question.ID)
	if err != nil {
		slog.Error("engine: count responses failed", "session", a.id, "error", err)
	}

	a.hub.ToPresenter(a.send(answerReceivedMsg{
		Type:              TypeAnswerReceived,
		AnsweredCount:     answered,
		TotalParticipants: a.participantCount,
		ParticipantID:     participantID,
	}))

	metrics.AnswersScored.WithLabelValues(strconv.FormatBool(matched.IsCorrect)).Inc()

	return SubmitResult{
		IsCorrect:     matched.IsCorrect,
		PointsAwarded: points,
		TotalScore:    totalScore,
	}
}

// AnswerSubmittedPayload marshals the private acknowledgment sent only to
// the submitting participant.
func AnswerSubmittedPayload(r SubmitResult) []byte {
	b, _ := json.Marshal(answerSubmittedMsg{
		Type:          TypeAnswerSubmitted,
		IsCorrect:     r.IsCorrect,
		PointsAwarded: r.PointsAwarded,
		TotalScore:    r.TotalScore,
	})
	return b
}

// ErrorPayload marshals a generic {type, message} error frame.
func ErrorPayload(message string) []byte {
	b, _ := json.Marshal(errorMsg{Type: TypeError, Message: message})
	return b
}

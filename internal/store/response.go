// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"fmt"

	"github.com/google/uuid"
)

// InsertResponse records a participant's answer to a question. The
// UNIQUE(participant_id, question_id) constraint enforces at-most-once
// answering at most once; a violation here means the participant already
// answered this question and is surfaced as ErrConflict.
func (s *Store) InsertResponse(participantID, questionID, answerID string, isCorrect bool, responseTime float64, pointsAwarded int) (*Response, error) {
	r := &Response{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		QuestionID:    questionID,
		AnswerID:      &answerID,
		IsCorrect:     isCorrect,
		ResponseTime:  responseTime,
		PointsAwarded: pointsAwarded,
	}
	_, err := s.conn.Exec(
		`INSERT INTO participant_responses (id, participant_id, question_id, answer_id, is_correct, response_time, points_awarded) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ParticipantID, r.QuestionID, *r.AnswerID, boolToInt(r.IsCorrect), r.ResponseTime, r.PointsAwarded,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert response: %w", err)
	}
	return r, nil
}

// CountResponsesForQuestion returns how many participants have answered a question.
func (s *Store) CountResponsesForQuestion(questionID string) (int, error) {
	var n int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM participant_responses WHERE question_id = ?`, questionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// CountCorrectResponsesForQuestion returns how many recorded responses to a
// question were correct, used by the analytics per-question breakdown.
func (s *Store) CountCorrectResponsesForQuestion(questionID string) (int, error) {
	var n int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM participant_responses WHERE question_id = ? AND is_correct = 1`, questionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count correct responses: %w", err)
	}
	return n, nil
}

// ListResponsesForParticipant returns every response a participant has
// recorded, used for CSV export and per-participant analytics.
func (s *Store) ListResponsesForParticipant(participantID string) ([]Response, error) {
	rows, err := s.conn.Query(
		`SELECT id, participant_id, question_id, answer_id, is_correct, response_time, points_awarded FROM participant_responses WHERE participant_id = ?`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Response
	for rows.Next() {
		var r Response
		var isCorrect int
		var answerID string
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.QuestionID, &answerID, &isCorrect, &r.ResponseTime, &r.PointsAwarded); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.AnswerID = &answerID
		r.IsCorrect = isCorrect != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListResponsesForQuestion returns every response recorded against a single
// question, used to build the reveal payload's stats and per-player results.
func (s *Store) ListResponsesForQuestion(questionID string) ([]Response, error) {
	rows, err := s.conn.Query(
		`SELECT id, participant_id, question_id, answer_id, is_correct, response_time, points_awarded FROM participant_responses WHERE question_id = ?`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list responses for question: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Response
	for rows.Next() {
		var r Response
		var isCorrect int
		var answerID string
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.QuestionID, &answerID, &isCorrect, &r.ResponseTime, &r.PointsAwarded); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.AnswerID = &answerID
		r.IsCorrect = isCorrect != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

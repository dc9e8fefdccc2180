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
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateQuiz inserts a quiz together with its nested questions and answers
// in a single transaction, mirroring the original's single-POST quiz create.
func (s *Store) CreateQuiz(ownerID, title, description string, questions []Question) (*Quiz, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	q := &Quiz{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := tx.Exec(
		`INSERT INTO quizzes (id, owner_id, title, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.OwnerID, q.Title, q.Description, fmtTime(now), fmtTime(now),
	); err != nil {
		return nil, fmt.Errorf("insert quiz: %w", err)
	}

	for _, question := range questions {
		question.ID = uuid.NewString()
		question.QuizID = q.ID
		if _, err := tx.Exec(
			`INSERT INTO questions (id, quiz_id, text, image_url, "order", time_limit) VALUES (?, ?, ?, ?, ?, ?)`,
			question.ID, question.QuizID, question.Text, question.ImageURL, question.Order, question.TimeLimit,
		); err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}
		for _, answer := range question.Answers {
			answer.ID = uuid.NewString()
			answer.QuestionID = question.ID
			if _, err := tx.Exec(
				`INSERT INTO answers (id, question_id, text, is_correct, "order") VALUES (?, ?, ?, ?, ?)`,
				answer.ID, answer.QuestionID, answer.Text, boolToInt(answer.IsCorrect), answer.Order,
			); err != nil {
				return nil, fmt.Errorf("insert answer: %w", err)
			}
		}
		q.Questions = append(q.Questions, question)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return q, nil
}

func fmtTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetQuiz loads a quiz with its questions ordered by question.order and each
// question's answers ordered by answer.order, so command handlers that read
// the quiz fresh always see a stable, deterministic ordering.
func (s *Store) GetQuiz(id string) (*Quiz, error) {
	row := s.conn.QueryRow(`SELECT id, owner_id, title, description, created_at, updated_at FROM quizzes WHERE id = ?`, id)
	var q Quiz
	var createdAt, updatedAt string
	if err := row.Scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &createdAt, &updatedAt); err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	q.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	q.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	qrows, err := s.conn.Query(`SELECT id, quiz_id, text, image_url, "order", time_limit FROM questions WHERE quiz_id = ? ORDER BY "order" ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer qrows.Close() //nolint:errcheck

	// Collect the questions and release qrows before loading answers: the
	// store holds a single connection, so a nested query issued while qrows
	// is still open would wait for that connection forever.
	var questions []Question
	for qrows.Next() {
		var question Question
		if err := qrows.Scan(&question.ID, &question.QuizID, &question.Text, &question.ImageURL, &question.Order, &question.TimeLimit); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := qrows.Err(); err != nil {
		return nil, err
	}
	_ = qrows.Close()

	for _, question := range questions {
		answers, err := s.answersForQuestion(question.ID)
		if err != nil {
			return nil, err
		}
		question.Answers = answers
		q.Questions = append(q.Questions, question)
	}
	return &q, nil
}

func (s *Store) answersForQuestion(questionID string) ([]Answer, error) {
	rows, err := s.conn.Query(`SELECT id, question_id, text, is_correct, "order" FROM answers WHERE question_id = ? ORDER BY "order" ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var answers []Answer
	for rows.Next() {
		var a Answer
		var isCorrect int
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &isCorrect, &a.Order); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.IsCorrect = isCorrect != 0
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ListQuizzesByOwner returns quiz summaries (no nested questions) for a presenter.
func (s *Store) ListQuizzesByOwner(ownerID string) ([]Quiz, error) {
	rows, err := s.conn.Query(`SELECT id, owner_id, title, description, created_at, updated_at FROM quizzes WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var quizzes []Quiz
	for rows.Next() {
		var q Quiz
		var createdAt, updatedAt string
		if err := rows.Scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		q.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		q.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// DeleteQuiz removes a quiz and its nested questions/answers.
func (s *Store) DeleteQuiz(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.Query(`SELECT id FROM questions WHERE quiz_id = ?`, id)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	var questionIDs []string
	for rows.Next() {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			rows.Close() //nolint:errcheck
			return err
		}
		questionIDs = append(questionIDs, qid)
	}
	rows.Close() //nolint:errcheck

	for _, qid := range questionIDs {
		if _, err := tx.Exec(`DELETE FROM answers WHERE question_id = ?`, qid); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM questions WHERE quiz_id = ?`, id); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

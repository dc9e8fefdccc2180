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
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// NewSessionCode generates a 6-char uppercase alphanumeric code via
// crypto/rand, rejection-sampled against codeAlphabet to avoid modulo bias.
func NewSessionCode() (string, error) {
	out := make([]byte, codeLength)
	buf := make([]byte, 1)
	for i := range out {
		for {
			if _, err := rand.Read(buf); err != nil {
				return "", fmt.Errorf("read random: %w", err)
			}
			// 256 % 36 != 0, so values >= 252 would bias the low end; redraw them.
			if int(buf[0]) >= len(codeAlphabet)*(256/len(codeAlphabet)) {
				continue
			}
			out[i] = codeAlphabet[int(buf[0])%len(codeAlphabet)]
			break
		}
	}
	return string(out), nil
}

// CreateSession inserts a new session in lobby status with current_question_idx=-1.
// Retries up to 3 times on a session-code collision.
func (s *Store) CreateSession(quizID, ownerID string) (*Session, error) {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := NewSessionCode()
		if err != nil {
			return nil, err
		}
		sess := &Session{
			ID:                 uuid.NewString(),
			QuizID:             quizID,
			OwnerID:            ownerID,
			Code:               code,
			Status:             StatusLobby,
			CurrentQuestionIdx: -1,
			CreatedAt:          time.Now().UTC(),
		}
		_, err = s.conn.Exec(
			`INSERT INTO sessions (id, quiz_id, owner_id, code, status, current_question_idx, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.QuizID, sess.OwnerID, sess.Code, string(sess.Status), sess.CurrentQuestionIdx, fmtTime(sess.CreatedAt),
		)
		if err == nil {
			return sess, nil
		}
		if isUniqueViolation(err) {
			lastErr = err
			continue
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return nil, fmt.Errorf("create session: exhausted code-collision retries: %w", lastErr)
}

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	var status, createdAt string
	if err := row.Scan(&s.ID, &s.QuizID, &s.OwnerID, &s.Code, &status, &s.CurrentQuestionIdx, &createdAt); err != nil {
		return nil, err
	}
	s.Status = SessionStatus(status)
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &s, nil
}

const sessionColumns = `id, quiz_id, owner_id, code, status, current_question_idx, created_at`

// GetSession loads a session by id.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.conn.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// GetSessionByCode loads a session by its 6-char join code. code must already
// be uppercased by the caller.
func (s *Store) GetSessionByCode(code string) (*Session, error) {
	row := s.conn.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE code = ?`, code)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get session by code: %w", err)
	}
	return sess, nil
}

// ListSessionsByOwner returns sessions owned by a presenter, newest first.
func (s *Store) ListSessionsByOwner(ownerID string) ([]Session, error) {
	rows, err := s.conn.Query(`SELECT `+sessionColumns+` FROM sessions WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

// UpdateSessionState persists a state-machine transition: new status and,
// when advancing to a question, the new current_question_idx.
func (s *Store) UpdateSessionState(id string, status SessionStatus, currentQuestionIdx int) error {
	res, err := s.conn.Exec(
		`UPDATE sessions SET status = ?, current_question_idx = ? WHERE id = ?`,
		string(status), currentQuestionIdx, id,
	)
	if err != nil {
		return fmt.Errorf("update session state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession cascades the deletion of a session's participants and responses.
func (s *Store) DeleteSession(id string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(
		`DELETE FROM participant_responses WHERE participant_id IN (SELECT id FROM participants WHERE session_id = ?)`, id,
	); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM participants WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

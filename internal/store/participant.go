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

// CreateParticipant inserts a participant row. Nickname uniqueness within a
// session is enforced by the UNIQUE(session_id, nickname) constraint and
// surfaced as ErrConflict so callers can report a "nickname taken" rejection.
func (s *Store) CreateParticipant(sessionID, nickname, token string) (*Participant, error) {
	p := &Participant{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Nickname:  nickname,
		Token:     token,
		Score:     0,
		JoinedAt:  time.Now().UTC(),
	}
	_, err := s.conn.Exec(
		`INSERT INTO participants (id, session_id, nickname, token, score, joined_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.SessionID, p.Nickname, p.Token, p.Score, fmtTime(p.JoinedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	return p, nil
}

func scanParticipant(row interface{ Scan(...any) error }) (*Participant, error) {
	var p Participant
	var joinedAt string
	if err := row.Scan(&p.ID, &p.SessionID, &p.Nickname, &p.Token, &p.Score, &joinedAt); err != nil {
		return nil, err
	}
	p.JoinedAt, _ = time.Parse(time.RFC3339Nano, joinedAt)
	return &p, nil
}

const participantColumns = `id, session_id, nickname, token, score, joined_at`

// GetParticipant loads a participant by id.
func (s *Store) GetParticipant(id string) (*Participant, error) {
	row := s.conn.QueryRow(`SELECT `+participantColumns+` FROM participants WHERE id = ?`, id)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// GetParticipantByNickname looks up an existing participant within a session
// by nickname, used to detect a rejoin versus a brand-new nickname.
func (s *Store) GetParticipantByNickname(sessionID, nickname string) (*Participant, error) {
	row := s.conn.QueryRow(`SELECT `+participantColumns+` FROM participants WHERE session_id = ? AND nickname = ?`, sessionID, nickname)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get participant by nickname: %w", err)
	}
	return p, nil
}

// ListParticipantsBySession returns a session's participants ordered by score
// descending, tie-broken by join order. This is not the leaderboard's
// tie-break (participant id ascending); callers that rank re-sort through
// engine.BuildLeaderboard.
func (s *Store) ListParticipantsBySession(sessionID string) ([]Participant, error) {
	rows, err := s.conn.Query(
		`SELECT `+participantColumns+` FROM participants WHERE session_id = ? ORDER BY score DESC, joined_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// IncrementScore adds points to a participant's running score.
func (s *Store) IncrementScore(participantID string, points int) error {
	res, err := s.conn.Exec(`UPDATE participants SET score = score + ? WHERE id = ?`, points, participantID)
	if err != nil {
		return fmt.Errorf("increment score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

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

import "time"

// User is a presenter account. Registration and credential hardening are out
// of scope for the engine; this is the minimal row needed for session.owner
// and JWT subjects to resolve to something real.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// Quiz is read-only to the engine once a session references it.
type Quiz struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Questions   []Question
}

// Question is one quiz question, ordered by Order within its quiz.
type Question struct {
	ID        string
	QuizID    string
	Text      string
	ImageURL  *string
	Order     int
	TimeLimit int
	Answers   []Answer
}

// Answer is one answer choice, ordered by Order within its question.
type Answer struct {
	ID         string
	QuestionID string
	Text       string
	IsCorrect  bool
	Order      int
}

// SessionStatus is one of the four legal Session State Machine states.
type SessionStatus string

const (
	StatusLobby     SessionStatus = "lobby"
	StatusActive    SessionStatus = "active"
	StatusRevealing SessionStatus = "revealing"
	StatusFinished  SessionStatus = "finished"
)

// Session is the authoritative persisted record of a live quiz session.
// CurrentQuestionIdx is -1 while Status == StatusLobby.
type Session struct {
	ID                 string
	QuizID             string
	OwnerID            string
	Code               string
	Status             SessionStatus
	CurrentQuestionIdx int
	CreatedAt          time.Time
}

// Participant is an anonymous player within one session.
type Participant struct {
	ID        string
	SessionID string
	Nickname  string
	Token     string
	Score     int
	JoinedAt  time.Time
}

// Response is one participant's answer (or lack thereof) to one question.
// InsertResponse always sets AnswerID; a participant who never answered a
// question has no Response row for it at all.
type Response struct {
	ID            string
	ParticipantID string
	QuestionID    string
	AnswerID      *string
	IsCorrect     bool
	ResponseTime  float64
	PointsAwarded int
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine is the Live Session Engine: the per-session state machine,
// answer intake and scoring, join admission, and late-joiner catch-up. Every
// write that touches a session's state runs on that session's own actor
// goroutine, so callers never take a lock directly.
package engine

// Outbound message type discriminators, matching the wire contract every
// connected client parses on its `type` field.
const (
	TypeGameStarted            = "game_started"
	TypeNewQuestion             = "new_question"
	TypeAnswerRevealed          = "answer_revealed"
	TypeGameEnded               = "game_ended"
	TypeParticipantJoined       = "participant_joined"
	TypeParticipantConnected    = "participant_connected"
	TypeParticipantDisconnected = "participant_disconnected"
	TypeAnswerSubmitted         = "answer_submitted"
	TypeAnswerReceived          = "answer_received"
	TypeError                   = "error"
)

// Inbound message types a stream may send, keyed by the sender's role.
const (
	TypeStartGame     = "start_game"
	TypeNextQuestion  = "next_question"
	TypeRevealAnswer  = "reveal_answer"
	TypeEndGame       = "end_game"
	TypeSubmitAnswer  = "submit_answer"
)

type gameStartedMsg struct {
	Type           string `json:"type"`
	TotalQuestions int    `json:"total_questions"`
}

type answerOut struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type answerRevealedOut struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
	IsCorrect bool   `json:"is_correct"`
}

type newQuestionMsg struct {
	Type           string      `json:"type"`
	QuestionIdx    int         `json:"question_idx"`
	TotalQuestions int         `json:"total_questions"`
	QuestionID     string      `json:"question_id"`
	Text           string      `json:"text"`
	Order          int         `json:"order"`
	TimeLimit      int         `json:"time_limit"`
	ImageURL       *string     `json:"image_url"`
	Answers        []answerOut `json:"answers"`
}

// LeaderboardEntry is the shared ranking shape used by answer_revealed,
// game_ended, and the REST leaderboard endpoint alike.
type LeaderboardEntry struct {
	ParticipantID string `json:"participant_id"`
	Nickname      string `json:"nickname"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`
}

type revealStats struct {
	TotalResponses int `json:"total_responses"`
	CorrectCount   int `json:"correct_count"`
}

type playerResult struct {
	ParticipantID string  `json:"participant_id"`
	Nickname      string  `json:"nickname"`
	IsCorrect     bool    `json:"is_correct"`
	AnswerID      *string `json:"answer_id"`
	PointsAwarded int     `json:"points_awarded"`
}

type answerRevealedMsg struct {
	Type           string              `json:"type"`
	QuestionIdx    int                 `json:"question_idx"`
	QuestionID     string              `json:"question_id"`
	Text           string              `json:"text"`
	Order          int                 `json:"order"`
	TimeLimit      int                 `json:"time_limit"`
	ImageURL       *string             `json:"image_url"`
	Answers        []answerRevealedOut `json:"answers"`
	Stats          revealStats         `json:"stats"`
	Leaderboard    []LeaderboardEntry  `json:"leaderboard"`
	PlayerResults  []playerResult      `json:"player_results"`
}

type gameEndedMsg struct {
	Type        string             `json:"type"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

type participantEventMsg struct {
	Type             string `json:"type"`
	ParticipantID    string `json:"participant_id"`
	Nickname         string `json:"nickname"`
	ParticipantCount int    `json:"participant_count"`
}

type answerSubmittedMsg struct {
	Type          string `json:"type"`
	IsCorrect     bool   `json:"is_correct"`
	PointsAwarded int    `json:"points_awarded"`
	TotalScore    int    `json:"total_score"`
}

type answerReceivedMsg struct {
	Type              string `json:"type"`
	AnsweredCount     int    `json:"answered_count"`
	TotalParticipants int    `json:"total_participants"`
	ParticipantID     string `json:"participant_id"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

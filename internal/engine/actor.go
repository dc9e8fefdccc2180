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
	"log/slog"
	"time"

	"github.com/Roadmvn/quizforge/internal/hub"
	"github.com/Roadmvn/quizforge/internal/metrics"
	"github.com/Roadmvn/quizforge/internal/store"
)

// Actor is the single logical worker for one live session. Every method that
// mutates session state enqueues a closure onto the actor's mailbox and
// blocks until it runs, giving the per-session serialization its callers need without any
// lock visible to callers.
type Actor struct {
	id      string
	quizID  string
	ownerID string
	store   *store.Store
	hub     *hub.Hub
	mailbox chan func()

	status             store.SessionStatus
	currentQuestionIdx int
	participantCount   int

	questionSentAt    time.Time
	hasQuestionSentAt bool
}

func newActor(session *store.Session, st *store.Store, participantCount int) *Actor {
	a := &Actor{
		id:                 session.ID,
		quizID:             session.QuizID,
		ownerID:            session.OwnerID,
		store:              st,
		hub:                hub.New(),
		mailbox:            make(chan func()),
		status:             session.Status,
		currentQuestionIdx: session.CurrentQuestionIdx,
		participantCount:   participantCount,
	}
	go a.run()
	return a
}

func (a *Actor) run() {
	for fn := range a.mailbox {
		fn()
	}
}

// do enqueues fn and waits for it to finish executing on the actor goroutine.
func (a *Actor) do(fn func()) {
	done := make(chan struct{})
	a.mailbox <- func() {
		fn()
		close(done)
	}
	<-done
}

// doTimed is do, with the command's mailbox latency recorded under name.
func (a *Actor) doTimed(name string, fn func()) {
	start := time.Now()
	a.do(fn)
	metrics.CommandLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// Hub exposes the session's subscriber hub for the WebSocket layer's
// write-pump wiring.
func (a *Actor) Hub() *hub.Hub { return a.hub }

// OwnerID returns the presenter id that owns this session, for auth checks.
func (a *Actor) OwnerID() string { return a.ownerID }

// ID returns the session id this actor governs.
func (a *Actor) ID() string { return a.id }

func (a *Actor) send(payload any) []byte {
	b, err := json.Marshal(payload)
	if err != nil {
		slog.Error("engine: marshal outbound message failed", "session", a.id, "error", err)
		return nil
	}
	return b
}

// loadQuiz re-reads the quiz fresh on every command, so a command handler
// tolerates concurrent quiz edits that completed before the command.
func (a *Actor) loadQuiz() (*store.Quiz, error) {
	return a.store.GetQuiz(a.quizID)
}

func (a *Actor) buildNewQuestionPayload(quiz *store.Quiz, idx int) []byte {
	q := quiz.Questions[idx]
	answers := make([]answerOut, len(q.Answers))
	for i, ans := range q.Answers {
		answers[i] = answerOut{ID: ans.ID, Text: ans.Text, Order: ans.Order}
	}
	return a.send(newQuestionMsg{
		Type:           TypeNewQuestion,
		QuestionIdx:    idx,
		TotalQuestions: len(quiz.Questions),
		QuestionID:     q.ID,
		Text:           q.Text,
		Order:          q.Order,
		TimeLimit:      q.TimeLimit,
		ImageURL:       q.ImageURL,
		Answers:        answers,
	})
}

// StartGame implements lobby --start_game--> active(idx=0).
func (a *Actor) StartGame() {
	a.doTimed("start_game", func() {
		if a.status != store.StatusLobby {
			return
		}
		quiz, err := a.loadQuiz()
		if err != nil || len(quiz.Questions) == 0 {
			return
		}
		a.status = store.StatusActive
		a.currentQuestionIdx = 0
		if err := a.store.UpdateSessionState(a.id, a.status, a.currentQuestionIdx); err != nil {
			slog.Error("engine: persist start_game failed", "session", a.id, "error", err)
		}
		a.hub.Broadcast(a.send(gameStartedMsg{Type: TypeGameStarted, TotalQuestions: len(quiz.Questions)}))
		a.hub.Broadcast(a.buildNewQuestionPayload(quiz, 0))
		a.markQuestionSentLocked()
	})
}

// NextQuestion implements {active,revealing} --next_question--> active(idx+1).
func (a *Actor) NextQuestion() {
	a.doTimed("next_question", func() {
		if a.status != store.StatusActive && a.status != store.StatusRevealing {
			return
		}
		quiz, err := a.loadQuiz()
		if err != nil {
			slog.Error("engine: load quiz for next_question failed", "session", a.id, "error", err)
			return
		}
		next := a.currentQuestionIdx + 1
		if next >= len(quiz.Questions) {
			return
		}
		a.status = store.StatusActive
		a.currentQuestionIdx = next
		if err := a.store.UpdateSessionState(a.id, a.status, a.currentQuestionIdx); err != nil {
			slog.Error("engine: persist next_question failed", "session", a.id, "error", err)
		}
		a.hub.Broadcast(a.buildNewQuestionPayload(quiz, next))
		a.markQuestionSentLocked()
	})
}

// RevealAnswer implements {active,revealing} --reveal_answer--> revealing.
func (a *Actor) RevealAnswer() {
	a.doTimed("reveal_answer", func() {
		if a.status != store.StatusActive && a.status != store.StatusRevealing {
			return
		}
		quiz, err := a.loadQuiz()
		if err != nil || a.currentQuestionIdx >= len(quiz.Questions) {
			slog.Error("engine: load quiz for reveal_answer failed", "session", a.id, "error", err)
			return
		}
		a.status = store.StatusRevealing
		if err := a.store.UpdateSessionState(a.id, a.status, a.currentQuestionIdx); err != nil {
			slog.Error("engine: persist reveal_answer failed", "session", a.id, "error", err)
		}
		a.hub.Broadcast(a.buildRevealPayload(quiz))
	})
}

func (a *Actor) buildRevealPayload(quiz *store.Quiz) []byte {
	q := quiz.Questions[a.currentQuestionIdx]
	answers := make([]answerRevealedOut, len(q.Answers))
	for i, ans := range q.Answers {
		answers[i] = answerRevealedOut{ID: ans.ID, Text: ans.Text, Order: ans.Order, IsCorrect: ans.IsCorrect}
	}

	responses, err := a.store.ListResponsesForQuestion(q.ID)
	if err != nil {
		slog.Error("engine: list responses for reveal failed", "session", a.id, "error", err)
	}
	byParticipant := make(map[string]store.Response, len(responses))
	correctCount := 0
	for _, r := range responses {
		byParticipant[r.ParticipantID] = r
		if r.IsCorrect {
			correctCount++
		}
	}

	participants, err := a.store.ListParticipantsBySession(a.id)
	if err != nil {
		slog.Error("engine: list participants for reveal failed", "session", a.id, "error", err)
	}

	results := make([]playerResult, len(participants))
	lbInputs := make([]LeaderboardInput, len(participants))
	for i, p := range participants {
		lbInputs[i] = LeaderboardInput{ID: p.ID, Nickname: p.Nickname, Score: p.Score}
		if r, answered := byParticipant[p.ID]; answered {
			results[i] = playerResult{
				ParticipantID: p.ID,
				Nickname:      p.Nickname,
				IsCorrect:     r.IsCorrect,
				AnswerID:      r.AnswerID,
				PointsAwarded: r.PointsAwarded,
			}
		} else {
			results[i] = playerResult{ParticipantID: p.ID, Nickname: p.Nickname, IsCorrect: false, AnswerID: nil, PointsAwarded: 0}
		}
	}

	return a.send(answerRevealedMsg{
		Type:        TypeAnswerRevealed,
		QuestionIdx: a.currentQuestionIdx,
		QuestionID:  q.ID,
		Text:        q.Text,
		Order:       q.Order,
		TimeLimit:   q.TimeLimit,
		ImageURL:    q.ImageURL,
		Answers:     answers,
		Stats:       revealStats{TotalResponses: len(responses), CorrectCount: correctCount},
		Leaderboard: BuildLeaderboard(lbInputs),
		PlayerResults: results,
	})
}

// EndGame implements any non-finished --end_game--> finished.
func (a *Actor) EndGame() {
	a.doTimed("end_game", func() {
		if a.status == store.StatusFinished {
			return
		}
		a.status = store.StatusFinished
		if err := a.store.UpdateSessionState(a.id, a.status, a.currentQuestionIdx); err != nil {
			slog.Error("engine: persist end_game failed", "session", a.id, "error", err)
		}
		a.hub.Broadcast(a.send(gameEndedMsg{Type: TypeGameEnded, Leaderboard: a.currentLeaderboardLocked()}))
		a.hub.CloseAll()
	})
}

func (a *Actor) currentLeaderboardLocked() []LeaderboardEntry {
	participants, err := a.store.ListParticipantsBySession(a.id)
	if err != nil {
		slog.Error("engine: list participants for leaderboard failed", "session", a.id, "error", err)
		return nil
	}
	in := make([]LeaderboardInput, len(participants))
	for i, p := range participants {
		in[i] = LeaderboardInput{ID: p.ID, Nickname: p.Nickname, Score: p.Score}
	}
	return BuildLeaderboard(in)
}

func (a *Actor) markQuestionSentLocked() {
	a.questionSentAt = time.Now()
	a.hasQuestionSentAt = true
}

// elapsedSinceQuestionLocked returns seconds since mark_question_sent, or 0
// if no question has been marked yet.
func (a *Actor) elapsedSinceQuestionLocked() float64 {
	if !a.hasQuestionSentAt {
		return 0
	}
	return time.Since(a.questionSentAt).Seconds()
}

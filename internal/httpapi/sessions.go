// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Roadmvn/quizforge/internal/authtoken"
	"github.com/Roadmvn/quizforge/internal/engine"
	"github.com/Roadmvn/quizforge/internal/store"
)

type createSessionRequest struct {
	QuizID string `json:"quiz_id" binding:"required"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	userID, _ := authtoken.UserID(c)

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := s.store.GetQuiz(req.QuizID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load quiz"})
		return
	}
	if quiz.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the quiz owner"})
		return
	}
	if len(quiz.Questions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz has no questions"})
		return
	}

	session, err := s.store.CreateSession(quiz.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) ownedSession(c *gin.Context, userID, id string) (*store.Session, bool) {
	session, err := s.store.GetSession(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return nil, false
	}
	if session.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the session owner"})
		return nil, false
	}
	return session, true
}

func (s *Server) handleListSessions(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	sessions, err := s.store.ListSessionsByOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleGetSession(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	session, ok := s.ownedSession(c, userID, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	session, ok := s.ownedSession(c, userID, c.Param("id"))
	if !ok {
		return
	}
	if err := s.store.DeleteSession(session.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete session"})
		return
	}
	s.registry.Remove(session.ID)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFinishSession(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	session, ok := s.ownedSession(c, userID, c.Param("id"))
	if !ok {
		return
	}
	a, err := s.registry.Actor(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session actor"})
		return
	}
	a.EndGame()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	session, ok := s.ownedSession(c, userID, c.Param("id"))
	if !ok {
		return
	}
	leaderboard, err := buildLeaderboardFromStore(s.store, session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute leaderboard"})
		return
	}
	c.JSON(http.StatusOK, leaderboard)
}

// buildLeaderboardFromStore ranks participants through engine.BuildLeaderboard
// so the REST leaderboard's tie-break (score desc, participant id asc)
// always matches the WS-broadcast leaderboard, instead of trusting SQL order.
func buildLeaderboardFromStore(st *store.Store, sessionID string) ([]engine.LeaderboardEntry, error) {
	participants, err := st.ListParticipantsBySession(sessionID)
	if err != nil {
		return nil, err
	}
	in := make([]engine.LeaderboardInput, len(participants))
	for i, p := range participants {
		in[i] = engine.LeaderboardInput{ID: p.ID, Nickname: p.Nickname, Score: p.Score}
	}
	return engine.BuildLeaderboard(in), nil
}

type joinRequest struct {
	Code     string `json:"code" binding:"required"`
	Nickname string `json:"nickname" binding:"required,max=50,nickname"`
}

func (s *Server) handleJoinSession(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	session, err := s.store.GetSessionByCode(code)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return
	}

	a, err := s.registry.Actor(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session actor"})
		return
	}

	result, err := a.Join(req.Nickname)
	switch {
	case errors.Is(err, engine.ErrSessionFinished):
		c.JSON(http.StatusBadRequest, gin.H{"error": "session has finished"})
		return
	case errors.Is(err, engine.ErrNicknameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "nickname already taken"})
		return
	case errors.Is(err, engine.ErrSessionStarted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "session already started"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join session"})
		return
	}

	p := result.Participant
	c.JSON(http.StatusCreated, gin.H{
		"id":         p.ID,
		"nickname":   p.Nickname,
		"score":      p.Score,
		"joined_at":  p.JoinedAt,
		"session_id": p.SessionID,
		"token":      p.Token,
	})
}

func (s *Server) handleGetSessionByCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	session, err := s.store.GetSessionByCode(code)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return
	}
	quiz, err := s.store.GetQuiz(session.QuizID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load quiz"})
		return
	}
	participants, err := s.store.ListParticipantsBySession(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count participants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":                  session.Code,
		"status":                session.Status,
		"quiz_title":            quiz.Title,
		"current_question_idx": session.CurrentQuestionIdx,
		"participant_count":     len(participants),
	})
}

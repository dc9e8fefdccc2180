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

	"github.com/gin-gonic/gin"

	"github.com/Roadmvn/quizforge/internal/authtoken"
	"github.com/Roadmvn/quizforge/internal/store"
)

// quizAnswerRequest and quizQuestionRequest mirror store.Answer/Question
// minus server-assigned fields (id); quiz authoring is a thin surface the
// engine only reads from once a session references a quiz.
type quizAnswerRequest struct {
	Text      string `json:"text" binding:"required"`
	Order     int    `json:"order"`
	IsCorrect bool   `json:"is_correct"`
}

type quizQuestionRequest struct {
	Text      string              `json:"text" binding:"required"`
	ImageURL  *string             `json:"image_url"`
	Order     int                 `json:"order"`
	TimeLimit int                 `json:"time_limit" binding:"required,min=1"`
	Answers   []quizAnswerRequest `json:"answers" binding:"required,min=2,max=6,dive"`
}

type createQuizRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Questions   []quizQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

func (s *Server) handleCreateQuiz(c *gin.Context) {
	userID, _ := authtoken.UserID(c)

	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]store.Question, len(req.Questions))
	for i, q := range req.Questions {
		hasCorrect := false
		answers := make([]store.Answer, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = store.Answer{Text: a.Text, Order: a.Order, IsCorrect: a.IsCorrect}
			hasCorrect = hasCorrect || a.IsCorrect
		}
		if !hasCorrect {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every question needs at least one correct answer"})
			return
		}
		questions[i] = store.Question{Text: q.Text, ImageURL: q.ImageURL, Order: q.Order, TimeLimit: q.TimeLimit, Answers: answers}
	}

	quiz, err := s.store.CreateQuiz(userID, req.Title, req.Description, questions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create quiz"})
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (s *Server) handleListQuizzes(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	quizzes, err := s.store.ListQuizzesByOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list quizzes"})
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

func (s *Server) handleGetQuiz(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	quiz, err := s.store.GetQuiz(c.Param("id"))
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
	c.JSON(http.StatusOK, quiz)
}

func (s *Server) handleDeleteQuiz(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	quiz, err := s.store.GetQuiz(c.Param("id"))
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
	if err := s.store.DeleteQuiz(quiz.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete quiz"})
		return
	}
	c.Status(http.StatusNoContent)
}

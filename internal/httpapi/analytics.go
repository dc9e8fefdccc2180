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
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Roadmvn/quizforge/internal/authtoken"
)

type questionStat struct {
	QuestionID     string  `json:"question_id"`
	Text           string  `json:"text"`
	TotalResponses int     `json:"total_responses"`
	CorrectCount   int     `json:"correct_count"`
	AccuracyRate   float64 `json:"accuracy_rate"`
}

type participantStat struct {
	ParticipantID string `json:"participant_id"`
	Nickname      string `json:"nickname"`
	Score         int    `json:"score"`
	CorrectCount  int    `json:"correct_count"`
	TotalAnswered int    `json:"total_answered"`
}

// handleAnalytics reads the same persisted data the leaderboard and export
// endpoints read; it is not on the hot path so it bypasses the session
// actor entirely, since it doesn't need atomicity with a concurrent write.
func (s *Server) handleAnalytics(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	session, ok := s.ownedSession(c, userID, c.Param("id"))
	if !ok {
		return
	}

	quiz, err := s.store.GetQuiz(session.QuizID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load quiz"})
		return
	}
	participants, err := s.store.ListParticipantsBySession(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list participants"})
		return
	}

	// Each question's two counts are independent reads; fetch them concurrently
	// instead of round-tripping the store once per question in sequence.
	questionStats := make([]questionStat, len(quiz.Questions))
	g, _ := errgroup.WithContext(c.Request.Context())
	for i, q := range quiz.Questions {
		i, q := i, q
		g.Go(func() error {
			total, err := s.store.CountResponsesForQuestion(q.ID)
			if err != nil {
				return err
			}
			correct, err := s.store.CountCorrectResponsesForQuestion(q.ID)
			if err != nil {
				return err
			}
			rate := 0.0
			if total > 0 {
				rate = float64(correct) / float64(total)
			}
			questionStats[i] = questionStat{QuestionID: q.ID, Text: q.Text, TotalResponses: total, CorrectCount: correct, AccuracyRate: rate}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute question stats"})
		return
	}

	var easiest, hardest *questionStat
	for i := range questionStats {
		if questionStats[i].TotalResponses == 0 {
			continue
		}
		if easiest == nil || questionStats[i].AccuracyRate > easiest.AccuracyRate {
			easiest = &questionStats[i]
		}
		if hardest == nil || questionStats[i].AccuracyRate < hardest.AccuracyRate {
			hardest = &questionStats[i]
		}
	}

	participantStats := make([]participantStat, len(participants))
	for i, p := range participants {
		responses, err := s.store.ListResponsesForParticipant(p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load responses"})
			return
		}
		correct := 0
		for _, r := range responses {
			if r.IsCorrect {
				correct++
			}
		}
		participantStats[i] = participantStat{
			ParticipantID: p.ID,
			Nickname:      p.Nickname,
			Score:         p.Score,
			CorrectCount:  correct,
			TotalAnswered: len(responses),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"questions":    questionStats,
		"participants": participantStats,
		"easiest":      easiest,
		"hardest":      hardest,
	})
}

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
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Roadmvn/quizforge/internal/authtoken"
	"github.com/Roadmvn/quizforge/internal/engine"
	"github.com/Roadmvn/quizforge/internal/store"
)

// formulaPrefixes are the leading characters spreadsheet apps treat as a
// formula; a cell starting with one of these is prefixed with an apostrophe
// to defuse spreadsheet formula injection on open.
var formulaPrefixes = []string{"=", "+", "-", "@", "\t", "\r"}

func defuse(cell string) string {
	for _, p := range formulaPrefixes {
		if strings.HasPrefix(cell, p) {
			return "'" + cell
		}
	}
	return cell
}

func (s *Server) handleExport(c *gin.Context) {
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

	header := []string{"Rank", "Nickname", "Total Score"}
	for i := range quiz.Questions {
		n := i + 1
		header = append(header,
			fmt.Sprintf("Q%d: Answer", n),
			fmt.Sprintf("Q%d: Correct?", n),
			fmt.Sprintf("Q%d: Time(s)", n),
			fmt.Sprintf("Q%d: Points", n),
		)
	}

	// Rank through engine.BuildLeaderboard so the exported Rank column uses
	// the same score-desc/participant-id-asc tie-break as the WS-broadcast
	// leaderboard, instead of trusting ListParticipantsBySession's SQL order.
	lbInputs := make([]engine.LeaderboardInput, len(participants))
	byID := make(map[string]store.Participant, len(participants))
	for i, p := range participants {
		lbInputs[i] = engine.LeaderboardInput{ID: p.ID, Nickname: p.Nickname, Score: p.Score}
		byID[p.ID] = p
	}
	ranked := engine.BuildLeaderboard(lbInputs)

	rows := make([][]string, 0, len(ranked))
	for _, entry := range ranked {
		p := byID[entry.ParticipantID]
		responses, err := s.store.ListResponsesForParticipant(p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load responses"})
			return
		}
		byQuestion := make(map[string]store.Response, len(responses))
		for _, r := range responses {
			byQuestion[r.QuestionID] = r
		}

		row := []string{strconv.Itoa(entry.Rank), defuse(p.Nickname), strconv.Itoa(p.Score)}
		for _, q := range quiz.Questions {
			r, answered := byQuestion[q.ID]
			if !answered {
				row = append(row, defuse("No answer"), "false", "", "0")
				continue
			}
			answerText := answerTextFor(q, r.AnswerID)
			row = append(row,
				defuse(answerText),
				strconv.FormatBool(r.IsCorrect),
				strconv.FormatFloat(r.ResponseTime, 'f', 2, 64),
				strconv.Itoa(r.PointsAwarded),
			)
		}
		rows = append(rows, row)
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=session-%s.csv", session.Code))

	w := csv.NewWriter(c.Writer)
	if err := w.Write(header); err != nil {
		return
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return
		}
	}
	w.Flush()
}

func answerTextFor(q store.Question, answerID *string) string {
	if answerID == nil {
		return "No answer"
	}
	for _, a := range q.Answers {
		if a.ID == *answerID {
			return a.Text
		}
	}
	return "No answer"
}

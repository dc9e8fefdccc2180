// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wsserver upgrades /ws/session/{session_id} to a WebSocket and
// dispatches authenticated frames into the Live Session Engine: an
// upgrade-then-loop handler that authenticates the first frame and then
// dispatches every subsequent frame by the connection's role.
package wsserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Roadmvn/quizforge/internal/authtoken"
	"github.com/Roadmvn/quizforge/internal/engine"
	"github.com/Roadmvn/quizforge/internal/hub"
	"github.com/Roadmvn/quizforge/internal/store"
)

const (
	authTimeout   = 10 * time.Second
	maxFrameBytes = 4096
)

// WebSocket close codes used to signal auth failures to the client.
const (
	closeBadAuth       = 4001
	closeForbidden     = 4003
	closeNotFound      = 4004
	closeAuthTimeout   = 4008
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server wires the engine's session registry into the WebSocket transport.
type Server struct {
	registry *engine.Registry
	store    *store.Store
	signer   *authtoken.Signer
}

// New builds a Server ready to handle upgrades.
func New(registry *engine.Registry, st *store.Store, signer *authtoken.Signer) *Server {
	return &Server{registry: registry, store: st, signer: signer}
}

type authFrame struct {
	Type          string `json:"type"`
	Role          string `json:"role"`
	Token         string `json:"token"`
	ParticipantID string `json:"participant_id"`
}

type inboundFrame struct {
	Type     string `json:"type"`
	AnswerID string `json:"answer_id"`
}

// Handle is the gin.HandlerFunc for GET /ws/session/{session_id}.
func (s *Server) Handle(c *gin.Context) {
	sessionID := c.Param("session_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("wsserver: upgrade failed", "error", err)
		return
	}
	defer conn.Close() //nolint:errcheck

	a, err := s.registry.Actor(sessionID)
	if err != nil {
		closeWith(conn, closeNotFound, "session not found")
		return
	}

	role, participantID, nickname, ok := s.authenticate(conn, a)
	if !ok {
		return
	}

	sub := a.Attach(role, participantID, nickname)
	if err := conn.WriteJSON(gin.H{"type": "auth_ok"}); err != nil {
		a.Detach(sub)
		return
	}

	done := make(chan struct{})
	go s.writePump(conn, sub, done)
	s.readPump(conn, a, sub)

	a.Detach(sub)
	close(done)
}

// authenticate waits for the bounded auth frame and validates the claimed
// identity against the session's owner (admin) or a persisted participant
// (participant), closing with the appropriate code on any mismatch.
func (s *Server) authenticate(conn *websocket.Conn, a *engine.Actor) (hub.Role, string, string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))
	var frame authFrame
	if err := conn.ReadJSON(&frame); err != nil {
		closeWith(conn, closeAuthTimeout, "auth timeout")
		return 0, "", "", false
	}
	_ = conn.SetReadDeadline(time.Time{})

	switch frame.Role {
	case "admin":
		userID, err := s.signer.Verify(frame.Token)
		if err != nil {
			closeWith(conn, closeBadAuth, "bad token")
			return 0, "", "", false
		}
		if userID != a.OwnerID() {
			closeWith(conn, closeForbidden, "not session owner")
			return 0, "", "", false
		}
		return hub.RolePresenter, "", "", true

	case "participant":
		participant, err := s.store.GetParticipant(frame.ParticipantID)
		if err != nil {
			closeWith(conn, closeNotFound, "participant not found")
			return 0, "", "", false
		}
		if participant.SessionID != a.ID() || participant.Token != frame.Token {
			closeWith(conn, closeBadAuth, "bad participant token")
			return 0, "", "", false
		}
		return hub.RoleParticipant, participant.ID, participant.Nickname, true

	default:
		closeWith(conn, closeBadAuth, "unknown role")
		return 0, "", "", false
	}
}

// readPump decodes ingress frames and dispatches them to the actor,
// enforcing the size cap and role-scoped message-type allow-list. Every
// reply is queued on sub's outbox rather than written to conn directly, so
// the connection's write pump goroutine remains the socket's sole writer.
func (s *Server) readPump(conn *websocket.Conn, a *engine.Actor, sub *hub.Subscriber) {
	// A frame larger than maxFrameBytes but within this transport limit gets a
	// "Message too large" reply and the stream stays open; gorilla closes the
	// connection only for a frame past the transport limit.
	const transportReadLimit = 16 * maxFrameBytes
	conn.SetReadLimit(transportReadLimit)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !isWSClosed(err) {
				slog.Warn("wsserver: read failed", "session", a.ID(), "error", err)
			}
			return
		}
		if len(raw) > maxFrameBytes {
			a.Hub().Reply(sub, engine.ErrorPayload("Message too large"))
			continue
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			a.Hub().Reply(sub, engine.ErrorPayload("invalid JSON"))
			continue
		}

		s.dispatch(a, sub, frame)
	}
}

func (s *Server) dispatch(a *engine.Actor, sub *hub.Subscriber, frame inboundFrame) {
	if sub.Role == hub.RolePresenter {
		switch frame.Type {
		case engine.TypeStartGame:
			a.StartGame()
		case engine.TypeNextQuestion:
			a.NextQuestion()
		case engine.TypeRevealAnswer:
			a.RevealAnswer()
		case engine.TypeEndGame:
			a.EndGame()
		default:
			a.Hub().Reply(sub, engine.ErrorPayload("unknown message type for role"))
		}
		return
	}

	switch frame.Type {
	case engine.TypeSubmitAnswer:
		result := a.SubmitAnswer(sub.ParticipantID, frame.AnswerID)
		if result.Silent {
			return
		}
		if result.Reject != "" {
			a.Hub().Reply(sub, engine.ErrorPayload(result.Reject))
			return
		}
		a.Hub().Reply(sub, engine.AnswerSubmittedPayload(result))
	default:
		a.Hub().Reply(sub, engine.ErrorPayload("unknown message type for role"))
	}
}

// writePump drains a subscriber's outbox into the socket until it is closed
// by the hub (detach) or the connection's read side exits.
func (s *Server) writePump(conn *websocket.Conn, sub *hub.Subscriber, done <-chan struct{}) {
	for {
		select {
		case payload, ok := <-sub.Outbox():
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// isWSClosed reports whether err is a normal/expected WebSocket close, used
// by callers that want to suppress logging for routine disconnects.
func isWSClosed(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr) || strings.Contains(err.Error(), "use of closed network connection")
}

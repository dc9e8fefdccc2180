// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package authtoken mints and verifies the signed presenter credentials used
// to gate REST authoring endpoints and the admin role on a session's
// WebSocket connection.
package authtoken

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers expiry, bad signature, and malformed claims alike;
// callers don't need to distinguish the reason, only that auth failed.
var ErrInvalidToken = errors.New("authtoken: invalid token")

const tokenTTL = 24 * time.Hour

// Signer mints and verifies HS256 presenter tokens.
type Signer struct {
	secret []byte
}

// NewSigner builds a Signer from the configured QUIZFORGE_SECRET_KEY.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Mint issues a token whose subject is the presenter's user id, expiring
// tokenTTL from now.
func (s *Signer) Mint(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the presenter's user id.
func (s *Signer) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>",
// case-insensitive on the scheme, per RFC 7235.
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// contextUserIDKey is the gin.Context key RequireAuth stores the verified
// presenter id under.
const contextUserIDKey = "quizforge_user_id"

// RequireAuth is gin middleware gating presenter-only REST endpoints.
func (s *Signer) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, err := s.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// UserID retrieves the authenticated presenter's id set by RequireAuth.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

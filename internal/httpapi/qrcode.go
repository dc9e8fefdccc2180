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
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/Roadmvn/quizforge/internal/authtoken"
)

const qrPixelSize = 320

func (s *Server) handleQRCode(c *gin.Context) {
	userID, _ := authtoken.UserID(c)
	session, ok := s.ownedSession(c, userID, c.Param("id"))
	if !ok {
		return
	}

	baseURL := c.Query("base_url")
	if baseURL == "" {
		baseURL = "http://" + c.Request.Host
	}
	joinURL := fmt.Sprintf("%s/join/%s", baseURL, session.Code)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, qrPixelSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate qr code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qr_base64": base64.StdEncoding.EncodeToString(png),
		"join_url":  joinURL,
		"code":      session.Code,
	})
}

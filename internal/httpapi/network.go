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
)

// handleNetworkInfo returns the advisory LAN address presenters display
// alongside a session's QR code so phones on the same network can reach the
// host directly.
func (s *Server) handleNetworkInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lan_ip": s.cfg.HostLANIP})
}

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

import "errors"

// Errors returned by REST-facing engine operations (join, command dispatch
// from a REST wrapper). Stream-originated rejections are instead delivered
// as an error message to the originating subscriber.
var (
	ErrSessionNotFound   = errors.New("engine: session not found")
	ErrSessionFinished   = errors.New("engine: session finished")
	ErrNicknameTaken     = errors.New("engine: nickname already taken")
	ErrSessionStarted    = errors.New("engine: session already started")
	ErrIllegalTransition = errors.New("engine: illegal state transition")
)

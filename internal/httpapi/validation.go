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
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// nicknamePattern allows letters, digits, underscore, whitespace, hyphen, or dot.
var nicknamePattern = regexp.MustCompile(`^[\w\s\-\.]+$`)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("nickname", validateNickname)
}

// validateNickname backs the "nickname" binding tag on joinRequest.
func validateNickname(fl validator.FieldLevel) bool {
	return nicknamePattern.MatchString(fl.Field().String())
}

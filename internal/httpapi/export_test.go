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

import "testing"

func TestDefuse_PrefixesFormulaLeadingCharacters(t *testing.T) {
	cases := map[string]string{
		"=SUM(A1:A2)": "'=SUM(A1:A2)",
		"+1":          "'+1",
		"-1":          "'-1",
		"@cmd":        "'@cmd",
		"\tfoo":       "'\tfoo",
		"\rfoo":       "'\rfoo",
		"alice":       "alice",
		"No answer":   "No answer",
	}
	for in, want := range cases {
		if got := defuse(in); got != want {
			t.Errorf("defuse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNicknamePattern_AllowsWordCharsSpaceHyphenDot(t *testing.T) {
	valid := []string{"alice", "alice-smith", "alice.smith", "alice_smith", "alice smith", "a1B_ -."}
	for _, n := range valid {
		if !nicknamePattern.MatchString(n) {
			t.Errorf("expected %q to match nickname pattern", n)
		}
	}

	invalid := []string{"alice!", "alice@bob", "<script>", "alice/bob"}
	for _, n := range invalid {
		if nicknamePattern.MatchString(n) {
			t.Errorf("expected %q to be rejected by nickname pattern", n)
		}
	}
}

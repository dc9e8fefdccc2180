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

import "math"

// score computes the speed-weighted points for a correct answer. elapsed and
// timeLimit are both seconds; elapsed must already be clamped to
// [0, timeLimit] by the caller. Returns 0 unconditionally for an incorrect
// answer. Computed in floating point and truncated, never rounded, so tests
// can pin exact elapsed values to exact point totals.
func score(isCorrect bool, elapsed float64, timeLimit int) int {
	if !isCorrect {
		return 0
	}
	tl := float64(timeLimit)
	if tl < 1 {
		tl = 1
	}
	ratio := 1 - elapsed/tl
	if ratio < 0 {
		ratio = 0
	}
	return int(math.Floor(500 + 500*ratio))
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildLeaderboard ranks participants by score descending, ties broken by
// participant id ascending for a stable deterministic order.
func BuildLeaderboard(participants []LeaderboardInput) []LeaderboardEntry {
	sorted := make([]LeaderboardInput, len(participants))
	copy(sorted, participants)
	sortLeaderboardInputs(sorted)

	out := make([]LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		out[i] = LeaderboardEntry{
			ParticipantID: p.ID,
			Nickname:      p.Nickname,
			Score:         p.Score,
			Rank:          i + 1,
		}
	}
	return out
}

type LeaderboardInput struct {
	ID       string
	Nickname string
	Score    int
}

func sortLeaderboardInputs(in []LeaderboardInput) {
	// Simple insertion sort: participant counts per session are small
	// (classroom-scale), and this keeps the tie-break rule (score desc,
	// id asc) explicit rather than hidden in a less-than closure.
	for i := 1; i < len(in); i++ {
		j := i
		for j > 0 && less(in[j], in[j-1]) {
			in[j], in[j-1] = in[j-1], in[j]
			j--
		}
	}
}

func less(a, b LeaderboardInput) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

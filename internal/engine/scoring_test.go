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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Incorrect(t *testing.T) {
	assert.Equal(t, 0, score(false, 0, 30))
	assert.Equal(t, 0, score(false, 29, 30))
}

func TestScore_ElapsedZero(t *testing.T) {
	assert.Equal(t, 1000, score(true, 0, 30))
}

func TestScore_ElapsedAtTimeLimit(t *testing.T) {
	assert.Equal(t, 500, score(true, 30, 30))
}

func TestScore_MidwayElapsed(t *testing.T) {
	// elapsed=3s of 30s tl: floor(500 + 500*(1-3/30)) = floor(950) = 950.
	assert.Equal(t, 950, score(true, 3, 30))
	// elapsed=15s of 30s tl: floor(500 + 500*0.5) = 750.
	assert.Equal(t, 750, score(true, 15, 30))
}

func TestScore_TimeLimitClampedToOne(t *testing.T) {
	// tl=1, elapsed clamped to 1 by the caller before reaching score().
	assert.Equal(t, 500, score(true, 1, 1))
}

func TestScore_NeverExceedsRange(t *testing.T) {
	for _, elapsed := range []float64{0, 1, 5, 10, 20, 30} {
		p := score(true, elapsed, 30)
		assert.GreaterOrEqual(t, p, 500)
		assert.LessOrEqual(t, p, 1000)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-5, 0, 30))
	assert.Equal(t, 30.0, clamp(35, 0, 30))
	assert.Equal(t, 15.0, clamp(15, 0, 30))
}

func TestBuildLeaderboard_OrdersByScoreDescThenIDAsc(t *testing.T) {
	in := []LeaderboardInput{
		{ID: "b", Nickname: "bob", Score: 950},
		{ID: "a", Nickname: "alice", Score: 950},
		{ID: "c", Nickname: "carol", Score: 1700},
	}
	out := BuildLeaderboard(in)

	assert.Equal(t, []LeaderboardEntry{
		{ParticipantID: "c", Nickname: "carol", Score: 1700, Rank: 1},
		{ParticipantID: "a", Nickname: "alice", Score: 950, Rank: 2},
		{ParticipantID: "b", Nickname: "bob", Score: 950, Rank: 3},
	}, out)
}

func TestBuildLeaderboard_Empty(t *testing.T) {
	assert.Empty(t, BuildLeaderboard(nil))
}

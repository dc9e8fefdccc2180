// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttachDetach_EmptiesRoom(t *testing.T) {
	h := New()
	sub := h.Attach(RoleParticipant, "p1", "alice")
	require.Equal(t, 1, h.ParticipantCount())

	h.Detach(sub)
	require.Equal(t, 0, h.ParticipantCount())
}

func TestDetach_IsIdempotent(t *testing.T) {
	h := New()
	sub := h.Attach(RoleParticipant, "p1", "alice")
	h.Detach(sub)
	require.NotPanics(t, func() { h.Detach(sub) })
}

func TestBroadcast_ReachesEveryMember(t *testing.T) {
	h := New()
	s1 := h.Attach(RolePresenter, "", "")
	s2 := h.Attach(RoleParticipant, "p1", "alice")

	h.Broadcast([]byte("hello"))

	require.Equal(t, []byte("hello"), <-s1.Outbox())
	require.Equal(t, []byte("hello"), <-s2.Outbox())
}

func TestBroadcast_PreservesPerSubscriberOrder(t *testing.T) {
	h := New()
	s := h.Attach(RoleParticipant, "p1", "alice")

	h.Broadcast([]byte("first"))
	h.Broadcast([]byte("second"))
	h.Broadcast([]byte("third"))

	require.Equal(t, []byte("first"), <-s.Outbox())
	require.Equal(t, []byte("second"), <-s.Outbox())
	require.Equal(t, []byte("third"), <-s.Outbox())
}

func TestToPresenter_OnlyReachesAdminRole(t *testing.T) {
	h := New()
	presenter := h.Attach(RolePresenter, "", "")
	participant := h.Attach(RoleParticipant, "p1", "alice")

	h.ToPresenter([]byte("admin-only"))

	require.Equal(t, []byte("admin-only"), <-presenter.Outbox())
	select {
	case <-participant.Outbox():
		t.Fatal("participant must not receive a to_presenter message")
	default:
	}
}

func TestToParticipant_TargetsOnlyMatchingParticipant(t *testing.T) {
	h := New()
	alice := h.Attach(RoleParticipant, "p1", "alice")
	bob := h.Attach(RoleParticipant, "p2", "bob")

	h.ToParticipant("p1", []byte("for-alice"))

	require.Equal(t, []byte("for-alice"), <-alice.Outbox())
	select {
	case <-bob.Outbox():
		t.Fatal("bob must not receive alice's targeted message")
	default:
	}
}

func TestToParticipant_DroppedWhenNoLiveStream(t *testing.T) {
	h := New()
	require.NotPanics(t, func() { h.ToParticipant("nonexistent", []byte("x")) })
}

func TestSend_FullOutboxDetachesSlowSubscriber(t *testing.T) {
	h := New()
	sub := h.Attach(RoleParticipant, "p1", "alice")

	for i := 0; i < outboxCap+5; i++ {
		h.Broadcast([]byte("msg"))
	}

	require.Equal(t, 0, h.ParticipantCount(), "a subscriber whose outbox overflows must be detached")
}

func TestCloseAll_DetachesEveryMember(t *testing.T) {
	h := New()
	h.Attach(RolePresenter, "", "")
	h.Attach(RoleParticipant, "p1", "alice")
	h.Attach(RoleParticipant, "p2", "bob")

	h.CloseAll()
	require.Equal(t, 0, h.ParticipantCount())
}

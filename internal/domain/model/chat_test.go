//go:build !integration

package model

import "testing"

func TestChatCounterpart(t *testing.T) {
	t.Run("should return the first non-owner participant", func(t *testing.T) {
		c := Chat{Users: []ChatUser{{ID: "1", Name: "Owner"}, {ID: "2", Name: "Buyer"}, {ID: "3", Name: "Other"}}}
		u, ok := c.Counterpart("1")
		if !ok || u.ID != "2" {
			t.Errorf("expected buyer 2, got %+v (ok=%v)", u, ok)
		}
	})

	t.Run("should report absence when only the owner is present", func(t *testing.T) {
		c := Chat{Users: []ChatUser{{ID: "1", Name: "Owner"}}}
		if _, ok := c.Counterpart("1"); ok {
			t.Error("expected no counterpart")
		}
	})

	t.Run("should handle chats without users", func(t *testing.T) {
		var c Chat
		if _, ok := c.Counterpart("1"); ok {
			t.Error("expected no counterpart")
		}
	})
}

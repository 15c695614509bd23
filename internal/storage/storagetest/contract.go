// Package storagetest runs the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/IgorGrieder/linkhub/internal/storage"
)

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("last writer wins", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "currentUser", `{"id":"1"}`); err != nil {
			t.Fatal(err)
		}
		if err := s.Set(ctx, "currentUser", `{"id":"2"}`); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, "currentUser")
		if err != nil {
			t.Fatal(err)
		}
		if got != `{"id":"2"}` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		_ = s.Set(ctx, "a", "1")
		_ = s.Set(ctx, "b", "2")
		_ = s.Set(ctx, "c", "3")

		if err := s.Delete(ctx, "a", "b", "never-set"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("a should be gone, got %v", err)
		}
		if got, _ := s.Get(ctx, "c"); got != "3" {
			t.Errorf("c = %q, want 3", got)
		}
	})

	t.Run("empty value is stored", func(t *testing.T) {
		s := newStore(t)
		_ = s.Set(ctx, "rememberedEmail", "")
		got, err := s.Get(ctx, "rememberedEmail")
		if err != nil || got != "" {
			t.Errorf("got %q, %v", got, err)
		}
	})
}

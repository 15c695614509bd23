package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/cache"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/remote/remotetest"
	"github.com/IgorGrieder/linkhub/internal/subject"
)

const janeProfile = `{"success":true,"profile":{"userId":42,"userEmail":"Jane@Example.com","displayName":"Jane","username":"jane","bio":"hi","template":"sunset"}}`

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestService(store *remotetest.Store) (*Service, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
	c := cache.New[Profile]("profile", 5*time.Minute).WithClock(clock.Now)
	return NewService(store, c), clock
}

func TestGetProfile_RequiresIdentifier(t *testing.T) {
	store := remotetest.New()
	svc, _ := newTestService(store)

	_, err := svc.GetProfile(context.Background(), Lookup{Username: "  "})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Count("") != 0 {
		t.Error("validation must fail before any network call")
	}
}

func TestGetProfile_CacheWindow(t *testing.T) {
	store := remotetest.New().Reply(remote.ActionGetProfile, janeProfile)
	svc, clock := newTestService(store)
	ctx := context.Background()

	res, err := svc.GetProfile(ctx, Lookup{UserID: "42"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Profile.Name != "Jane" || res.Profile.UserID != "42" {
		t.Fatalf("unexpected result: %+v", res)
	}

	clock.t = clock.t.Add(4*time.Minute + 59*time.Second)
	if _, err := svc.GetProfile(ctx, Lookup{UserID: "42"}); err != nil {
		t.Fatal(err)
	}
	if n := store.Count(remote.ActionGetProfile); n != 1 {
		t.Fatalf("fresh entry must not hit the store, got %d calls", n)
	}

	clock.t = clock.t.Add(2 * time.Second)
	if _, err := svc.GetProfile(ctx, Lookup{UserID: "42"}); err != nil {
		t.Fatal(err)
	}
	if n := store.Count(remote.ActionGetProfile); n != 2 {
		t.Errorf("expired entry must trigger exactly one call, got %d", n)
	}
}

func TestGetProfile_AliasesShareOneEntry(t *testing.T) {
	store := remotetest.New().Reply(remote.ActionGetProfile, janeProfile)
	svc, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.GetProfile(ctx, Lookup{Username: "@Jane"}); err != nil {
		t.Fatal(err)
	}
	for _, l := range []Lookup{{UserID: "42"}, {UserEmail: "jane@example.com"}, {Username: "jane"}} {
		if _, err := svc.GetProfile(ctx, l); err != nil {
			t.Fatal(err)
		}
	}
	if n := store.Count(remote.ActionGetProfile); n != 1 {
		t.Errorf("aliases should be warm, got %d calls", n)
	}

	sent := store.Calls(remote.ActionGetProfile)[0].Payload
	if sent["username"] != "Jane" {
		t.Errorf("username sent as %v", sent["username"])
	}

	svc.ClearCache("42")
	if _, err := svc.GetProfile(ctx, Lookup{Username: "jane"}); err != nil {
		t.Fatal(err)
	}
	if n := store.Count(remote.ActionGetProfile); n != 2 {
		t.Errorf("clearing the id must drop every alias, got %d calls", n)
	}
}

func TestGetProfile_RemoteFailureIsAResult(t *testing.T) {
	store := remotetest.New().Reply(remote.ActionGetProfile, `{"success":false,"message":"사용자를 찾을 수 없습니다"}`)
	svc, _ := newTestService(store)

	res, err := svc.GetProfile(context.Background(), Lookup{Username: "ghost"})
	if err != nil {
		t.Fatalf("remote failure must not be an error, got %v", err)
	}
	if res.Success || res.Message != "사용자를 찾을 수 없습니다" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestGetProfile_TransportFailure(t *testing.T) {
	store := remotetest.New().On(remote.ActionGetProfile, func(map[string]any) (string, error) {
		return "", &apperr.TransportError{Action: remote.ActionGetProfile, Kind: apperr.KindTimeout}
	})
	svc, _ := newTestService(store)

	_, err := svc.GetProfile(context.Background(), Lookup{UserID: "42"})
	if !errors.Is(err, apperr.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if got := apperr.UserMessage(err); got != constants.MsgRequestTimeout {
		t.Errorf("user message = %q", got)
	}
}

func TestSaveProfile(t *testing.T) {
	t.Run("email is mandatory", func(t *testing.T) {
		svc, _ := newTestService(remotetest.New())
		_, err := svc.SaveProfile(context.Background(), SaveInput{UserID: "42"})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("caches under the server id", func(t *testing.T) {
		store := remotetest.New().Reply(remote.ActionSaveProfile, `{"success":true,"actualUserId":77,"message":"saved"}`)
		svc, _ := newTestService(store)
		ctx := context.Background()

		res, err := svc.SaveProfile(ctx, SaveInput{UserEmail: "new@example.com", Name: "New", Username: "newbie"})
		if err != nil {
			t.Fatal(err)
		}
		if !res.Success || res.ActualUserID != "77" || res.Message != "saved" {
			t.Fatalf("unexpected result: %+v", res)
		}

		got, err := svc.GetProfile(ctx, Lookup{UserID: "77"})
		if err != nil {
			t.Fatal(err)
		}
		if got.Profile.Name != "New" || store.Count(remote.ActionGetProfile) != 0 {
			t.Errorf("saved profile should be served from cache: %+v", got)
		}
	})

	t.Run("remote failure is returned in the result", func(t *testing.T) {
		store := remotetest.New().Reply(remote.ActionSaveProfile, `{"success":false,"message":"duplicate username"}`)
		svc, _ := newTestService(store)

		res, err := svc.SaveProfile(context.Background(), SaveInput{UserEmail: "a@example.com"})
		if err != nil {
			t.Fatal(err)
		}
		if res.Success || res.Message != "duplicate username" {
			t.Errorf("unexpected result: %+v", res)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionGetProfile, janeProfile).
		Reply(remote.ActionSaveProfile, `{"success":true}`)
	svc, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.GetProfile(ctx, Lookup{UserID: "42"}); err != nil {
		t.Fatal(err)
	}

	bio := "updated"
	if err := svc.UpdateProfile(ctx, subject.ByID("42"), Update{Bio: &bio}); err != nil {
		t.Fatal(err)
	}

	sent := store.Calls(remote.ActionSaveProfile)[0].Payload
	if sent["userId"] != "42" || sent["bio"] != "updated" {
		t.Errorf("payload = %v", sent)
	}
	if _, ok := sent["name"]; ok {
		t.Error("unchanged fields must not be sent")
	}

	res, _ := svc.GetProfile(ctx, Lookup{Username: "jane"})
	if res.Profile.Bio != "updated" || res.Profile.Name != "Jane" {
		t.Errorf("cache not merged: %+v", res.Profile)
	}
	if n := store.Count(remote.ActionGetProfile); n != 1 {
		t.Errorf("merge should keep the entry warm, got %d calls", n)
	}
}

func TestUpdateProfile_Errors(t *testing.T) {
	store := remotetest.New().Reply(remote.ActionSaveProfile, `{"success":false,"message":"not allowed"}`)
	svc, _ := newTestService(store)
	ctx := context.Background()

	err := svc.UpdateProfile(ctx, subject.ByUsername("jane"), Update{})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("username is not enough to update, got %v", err)
	}
	if got := apperr.UserMessage(err); got != constants.MsgProfileOwnerMissing {
		t.Errorf("user message = %q", got)
	}

	err = svc.UpdateProfile(ctx, subject.ByEmail("jane@example.com"), Update{})
	var remoteErr *apperr.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.Message != "not allowed" {
		t.Errorf("expected RemoteError carrying the message, got %v", err)
	}
}

func TestCleanExpiredCache(t *testing.T) {
	store := remotetest.New().Reply(remote.ActionGetProfile, janeProfile)
	svc, clock := newTestService(store)

	if _, err := svc.GetProfile(context.Background(), Lookup{UserID: "42"}); err != nil {
		t.Fatal(err)
	}
	if removed := svc.CleanExpiredCache(); removed != 0 {
		t.Errorf("nothing should be stale yet, removed %d", removed)
	}

	clock.t = clock.t.Add(6 * time.Minute)
	if removed := svc.CleanExpiredCache(); removed != 3 {
		t.Errorf("removed %d aliases, want 3", removed)
	}
}

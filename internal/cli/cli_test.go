package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/app"
	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/cache"
	"github.com/IgorGrieder/linkhub/internal/links"
	"github.com/IgorGrieder/linkhub/internal/page"
	"github.com/IgorGrieder/linkhub/internal/profile"
	"github.com/IgorGrieder/linkhub/internal/remote"
	"github.com/IgorGrieder/linkhub/internal/remote/remotetest"
	"github.com/IgorGrieder/linkhub/internal/session"
	"github.com/IgorGrieder/linkhub/internal/storage/memory"
)

const (
	loginOK    = `{"success":true,"user":{"id":42,"email":"jane@example.com","name":"Jane","username":"jane"}}`
	threeLinks = `{"success":true,"links":[
		{"id":"a","title":"A","url":"https://a.example","order":1},
		{"id":"b","title":"B","url":"https://b.example","order":2},
		{"id":"c","title":"C","url":"https://c.example","order":3}
	]}`
)

// newTestApp wires the services over a fake store and in-memory storage,
// the same way app.New does in interactive mode.
func newTestApp(store *remotetest.Store) *app.App {
	kv := memory.New()
	sess := session.NewManager(store, kv)
	profiles := profile.NewService(store, cache.New[profile.Profile]("profile", time.Minute))
	linkSvc := links.NewService(store, cache.New[[]links.Link]("links", time.Minute))
	tracker := analytics.NewTracker(analytics.Deps{Store: store, Storage: kv, Identity: sess})

	return &app.App{
		Storage:  kv,
		Session:  sess,
		Profiles: profiles,
		Links:    linkSvc,
		Tracker:  tracker,
		Composer: page.NewComposer(page.Deps{
			Store:    store,
			Profiles: profiles,
			Links:    linkSvc,
			Tracker:  tracker,
		}),
	}
}

func run(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(func(context.Context) (*app.App, error) { return a, nil })

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func login(t *testing.T, a *app.App) {
	t.Helper()
	if _, err := run(t, a, "login", "-e", "jane@example.com", "-p", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestSessionSurvivesBetweenRuns(t *testing.T) {
	store := remotetest.New().Reply(remote.ActionLogin, loginOK)
	a := newTestApp(store)

	got, err := run(t, a, "login", "--email", "jane@example.com", "--password", "secret", "--remember")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Logged in as Jane <jane@example.com>") {
		t.Errorf("login output = %q", got)
	}

	got, err = run(t, a, "whoami")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "(id 42)") {
		t.Errorf("whoami output = %q", got)
	}

	if _, err := run(t, a, "logout"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, a, "whoami"); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn after logout, got %v", err)
	}

	// The remembered email fills in a login without --email.
	if _, err := run(t, a, "login", "-p", "secret"); err != nil {
		t.Fatalf("login with remembered email: %v", err)
	}
	if sent := store.Calls(remote.ActionLogin)[1].Payload["email"]; sent != "jane@example.com" {
		t.Errorf("remembered email not used, sent %v", sent)
	}
}

func TestLoginValidation(t *testing.T) {
	t.Setenv("LINKHUB_PASSWORD", "")
	store := remotetest.New()
	a := newTestApp(store)

	_, err := run(t, a, "login", "-e", "jane@example.com")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Count(remote.ActionLogin) != 0 {
		t.Error("missing password must not reach the store")
	}
}

func TestOwnCommandsRequireLogin(t *testing.T) {
	for _, args := range [][]string{
		{"links", "list"},
		{"links", "toggle", "a"},
		{"profile", "show"},
		{"stats"},
		{"dashboard"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			store := remotetest.New()
			if _, err := run(t, newTestApp(store), args...); !errors.Is(err, ErrNotLoggedIn) {
				t.Errorf("expected ErrNotLoggedIn, got %v", err)
			}
			if n := store.Count(""); n != 0 {
				t.Errorf("no store call expected, got %d", n)
			}
		})
	}
}

func TestLinksList(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionLogin, loginOK).
		Reply(remote.ActionGetLinks, threeLinks)
	a := newTestApp(store)
	login(t, a)

	got, err := run(t, a, "links", "list", "--sort", "title")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "https://b.example") || !strings.HasPrefix(got, "#") {
		t.Errorf("list output = %q", got)
	}

	sent := store.Calls(remote.ActionGetLinks)[0].Payload
	if sent["userId"] != "42" || sent["userEmail"] != "jane@example.com" {
		t.Errorf("get_links payload = %v", sent)
	}
}

func TestLinksAdd(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionLogin, loginOK).
		Reply(remote.ActionGetLinks, threeLinks).
		Reply(remote.ActionSaveLink, `{"success":true,"linkId":"d"}`)
	a := newTestApp(store)
	login(t, a)

	got, err := run(t, a, "links", "add", "--title", "Shop", "--url", "shop.example", "--style", "card")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Added link d.") {
		t.Errorf("add output = %q", got)
	}

	sent := store.Calls(remote.ActionSaveLink)[0].Payload
	if sent["url"] != "https://shop.example" || sent["style"] != "card" {
		t.Errorf("save_link payload = %v", sent)
	}
	if sent["userId"] != "42" || sent["order"] != float64(4) {
		t.Errorf("owner or order not filled in: %v", sent)
	}
}

func TestLinksAdd_InvalidDataNeverReachesStore(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionLogin, loginOK).
		Reply(remote.ActionGetLinks, threeLinks)
	a := newTestApp(store)
	login(t, a)

	_, err := run(t, a, "links", "add", "--title", strings.Repeat("x", 101), "--url", "x.example")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Count(remote.ActionSaveLink) != 0 {
		t.Error("save_link must not be called")
	}
}

func TestLinksMove(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionLogin, loginOK).
		Reply(remote.ActionGetLinks, threeLinks).
		Reply(remote.ActionUpdateLinkOrders, `{"success":true}`)
	a := newTestApp(store)
	login(t, a)

	if _, err := run(t, a, "links", "move", "3", "1"); err != nil {
		t.Fatal(err)
	}

	orders, _ := store.Calls(remote.ActionUpdateLinkOrders)[0].Payload["linkOrders"].(map[string]any)
	want := map[string]float64{"c": 1, "a": 2, "b": 3}
	for id, n := range want {
		if orders[id] != n {
			t.Errorf("order of %s = %v, want %v", id, orders[id], n)
		}
	}

	if _, err := run(t, a, "links", "move", "0", "1"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("position 0 should be rejected, got %v", err)
	}
}

func TestLinksToggle_RejectedChangeReportsStoreMessage(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionLogin, loginOK).
		Reply(remote.ActionGetLinks, threeLinks).
		Reply(remote.ActionUpdateLink, `{"success":false,"message":"sheet locked"}`)
	a := newTestApp(store)
	login(t, a)

	_, err := run(t, a, "links", "toggle", "a")
	if !errors.Is(err, apperr.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if got := describe(err); got != "sheet locked" {
		t.Errorf("describe = %q", got)
	}
}

func TestProfileUpdateSyncsSession(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionLogin, loginOK).
		Reply(remote.ActionSaveProfile, `{"success":true}`)
	a := newTestApp(store)
	login(t, a)

	if _, err := run(t, a, "profile", "update"); err == nil {
		t.Error("update without flags should fail")
	}

	if _, err := run(t, a, "profile", "update", "--name", "Janet", "--bio", ""); err != nil {
		t.Fatal(err)
	}

	sent := store.Calls(remote.ActionSaveProfile)[0].Payload
	if sent["userId"] != "42" || sent["name"] != "Janet" {
		t.Errorf("save_profile payload = %v", sent)
	}
	if _, ok := sent["username"]; ok {
		t.Error("flags not given must not be sent")
	}
	if u := a.Session.CurrentUser(); u.Name != "Janet" || u.Username != "jane" {
		t.Errorf("session not updated: %+v", u)
	}
}

func TestPage(t *testing.T) {
	const combined = `{"success":true,"profile":{"userId":"7","username":"bob","name":"Bob"},"links":[
		{"id":"y","title":"Second","url":"https://y.example","order":2},
		{"id":"x","title":"First","url":"https://x.example","order":1},
		{"id":"z","title":"Hidden","url":"https://z.example","order":3,"isActive":false}
	]}`

	t.Run("anonymous view", func(t *testing.T) {
		store := remotetest.New().
			Reply(remote.ActionGetProfileAndLinks, combined).
			Reply(remote.ActionVisitorLog, `{"success":true}`)
		a := newTestApp(store)

		got, err := run(t, a, "page", "bob")
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(got, "Hidden") || strings.Index(got, "First") > strings.Index(got, "Second") {
			t.Errorf("page output = %q", got)
		}

		visits := store.Calls(remote.ActionVisitorLog)
		if len(visits) != 1 || visits[0].Payload["page"] != "/bob" || visits[0].Payload["isLoggedIn"] != false {
			t.Errorf("visit not recorded as anonymous: %+v", visits)
		}
	})

	t.Run("open records a click", func(t *testing.T) {
		store := remotetest.New().
			Reply(remote.ActionGetProfileAndLinks, combined).
			Reply(remote.ActionVisitorLog, `{"success":true}`).
			Reply(remote.ActionLinkClick, `{"success":true}`)
		a := newTestApp(store)

		got, err := run(t, a, "page", "bob", "--open", "2")
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(got) != "https://y.example" {
			t.Errorf("output = %q", got)
		}
		clicks := store.Calls(remote.ActionLinkClick)
		if len(clicks) != 1 || clicks[0].Payload["linkId"] != "y" {
			t.Errorf("click not recorded: %+v", clicks)
		}

		if _, err := run(t, a, "page", "bob", "--open", "3"); err == nil {
			t.Error("hidden links are not on the page")
		}
	})
}

func TestStatsUnavailable(t *testing.T) {
	store := remotetest.New().
		Reply(remote.ActionLogin, loginOK).
		Reply(remote.ActionGetStats, `{"success":false}`)
	a := newTestApp(store)
	login(t, a)

	got, err := run(t, a, "stats", "--days", "30")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "unavailable") {
		t.Errorf("stats output = %q", got)
	}
	if days := store.Calls(remote.ActionGetStats)[0].Payload["days"]; days != float64(30) {
		t.Errorf("days = %v", days)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{"12", 11, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"first", 0, true},
	}
	for _, tt := range tests {
		got, err := position(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("position(%q) = %d, %v", tt.in, got, err)
		}
	}
}

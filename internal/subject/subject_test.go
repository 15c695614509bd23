package subject

import "testing"

func TestCanonicalKeys(t *testing.T) {
	tests := []struct {
		name string
		s    Subject
		want string
	}{
		{"id trimmed", ByID(" 42 "), "id:42"},
		{"email lowercased", ByEmail(" Foo@Example.COM "), "email:foo@example.com"},
		{"username strips at", ByUsername("@LinkIt"), "username:linkit"},
		{"empty id is zero", ByID("   "), ""},
		{"zero value", Subject{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	if got := First("7", "a@b.c", "x"); got.Kind() != KindID {
		t.Errorf("expected id to win, got %v", got.Kind())
	}
	if got := First("", "a@b.c", "x"); got.Kind() != KindEmail {
		t.Errorf("expected email to win, got %v", got.Kind())
	}
	if got := First("", "", "x"); got.Kind() != KindUsername {
		t.Errorf("expected username, got %v", got.Kind())
	}
	if got := First("", " ", ""); !got.IsZero() {
		t.Errorf("expected zero subject, got %v", got)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys("1", "", "Handle")
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	if keys[0] != "id:1" || keys[1] != "username:handle" {
		t.Errorf("unexpected keys: %v", keys)
	}
}

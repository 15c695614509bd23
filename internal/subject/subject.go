// Package subject models the identifier a caller uses to name a user.
//
// Services historically accepted a user id, an email or a username
// interchangeably. A Subject makes the variant explicit and canonicalizes it
// before it is used as a cache key.
package subject

import (
	"strings"
)

type Kind int

const (
	KindNone Kind = iota
	KindID
	KindEmail
	KindUsername
)

func (k Kind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindEmail:
		return "email"
	case KindUsername:
		return "username"
	default:
		return "none"
	}
}

// Subject is a single identifying attribute of a user.
type Subject struct {
	kind  Kind
	value string
}

func ByID(id string) Subject {
	return Subject{kind: KindID, value: strings.TrimSpace(id)}
}

// ByEmail lowercases the address; the store treats emails case-insensitively.
func ByEmail(email string) Subject {
	return Subject{kind: KindEmail, value: strings.ToLower(strings.TrimSpace(email))}
}

// ByUsername strips a leading "@" and lowercases the handle.
func ByUsername(username string) Subject {
	u := strings.TrimPrefix(strings.TrimSpace(username), "@")
	return Subject{kind: KindUsername, value: strings.ToLower(u)}
}

// First returns the strongest non-empty identifier: id, then email, then username.
func First(id, email, username string) Subject {
	for _, s := range []Subject{ByID(id), ByEmail(email), ByUsername(username)} {
		if !s.IsZero() {
			return s
		}
	}
	return Subject{}
}

func (s Subject) Kind() Kind     { return s.kind }
func (s Subject) Value() string  { return s.value }
func (s Subject) IsZero() bool   { return s.kind == KindNone || s.value == "" }
func (s Subject) String() string { return s.Key() }

// Key is the canonical cache key, e.g. "id:42" or "email:a@b.c".
func (s Subject) Key() string {
	if s.IsZero() {
		return ""
	}
	return s.kind.String() + ":" + s.value
}

// Keys returns the canonical keys of every non-empty identifier.
func Keys(id, email, username string) []string {
	keys := make([]string, 0, 3)
	for _, s := range []Subject{ByID(id), ByEmail(email), ByUsername(username)} {
		if !s.IsZero() {
			keys = append(keys, s.Key())
		}
	}
	return keys
}

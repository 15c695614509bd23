package http

import (
	"net/http"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/subject"
)

const (
	UserIDHeader    = "X-User-Id"
	UserEmailHeader = "X-User-Email"
	SessionIDHeader = "X-Session-Id"
)

// owner names the account a request acts on: query parameters first, then
// the X-User-* headers.
type owner struct {
	UserID    string
	UserEmail string
}

func ownerFrom(r *http.Request) owner {
	q := r.URL.Query()
	o := owner{
		UserID:    strings.TrimSpace(q.Get("userId")),
		UserEmail: strings.TrimSpace(q.Get("userEmail")),
	}
	if o.UserID == "" {
		o.UserID = strings.TrimSpace(r.Header.Get(UserIDHeader))
	}
	if o.UserEmail == "" {
		o.UserEmail = strings.TrimSpace(r.Header.Get(UserEmailHeader))
	}
	return o
}

func (o owner) subject() subject.Subject {
	return subject.First(o.UserID, o.UserEmail, "")
}

package profile

import (
	"strings"

	"github.com/IgorGrieder/linkhub/internal/subject"
	"github.com/spf13/cast"
)

// Profile is the public-facing facet of a user.
type Profile struct {
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail,omitempty"`
	Name      string `json:"name,omitempty"`
	Username  string `json:"username,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Template  string `json:"template,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Keys returns the canonical cache key of every identifier the profile carries.
func (p Profile) Keys() []string {
	return subject.Keys(p.UserID, p.UserEmail, p.Username)
}

// Lookup names a profile by any of its identifiers.
type Lookup struct {
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

func (l Lookup) subject() subject.Subject {
	return subject.First(l.UserID, l.UserEmail, l.Username)
}

// Result is what GetProfile returns when the store answered. A success=false
// answer is not an error: Success is false and Message explains why.
type Result struct {
	Success bool     `json:"success"`
	Profile *Profile `json:"profile,omitempty"`
	Message string   `json:"message,omitempty"`
}

// SaveInput is the payload of save_profile.
type SaveInput struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail" validate:"required,notblank,email"`
	Name      string `json:"name,omitempty" validate:"max=50"`
	Username  string `json:"username,omitempty" validate:"max=30"`
	Bio       string `json:"bio,omitempty" validate:"max=500"`
	Avatar    string `json:"avatar,omitempty"`
	Template  string `json:"template,omitempty"`
}

func (in SaveInput) profile(userID string) Profile {
	return Profile{
		UserID:    userID,
		UserEmail: strings.TrimSpace(in.UserEmail),
		Name:      in.Name,
		Username:  in.Username,
		Bio:       in.Bio,
		Avatar:    in.Avatar,
		Template:  in.Template,
	}
}

type SaveResult struct {
	Success      bool   `json:"success"`
	ActualUserID string `json:"actualUserId,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Update is a partial profile change. Nil fields are not sent.
type Update struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Template *string `json:"template,omitempty"`
}

func (u Update) Apply(p Profile) Profile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	if u.Template != nil {
		p.Template = *u.Template
	}
	return p
}

// FromRecord converts a raw store row. The display name arrives as either
// name or displayName depending on the sheet revision.
func FromRecord(rec map[string]any) Profile {
	name := text(rec["name"])
	if name == "" {
		name = text(rec["displayName"])
	}
	return Profile{
		UserID:    text(rec["userId"]),
		UserEmail: text(rec["userEmail"]),
		Name:      name,
		Username:  text(rec["username"]),
		Bio:       text(rec["bio"]),
		Avatar:    text(rec["avatar"]),
		Template:  text(rec["template"]),
		UpdatedAt: text(rec["updatedAt"]),
	}
}

func text(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

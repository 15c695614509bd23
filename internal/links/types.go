package links

// Style is the visual variant a link is rendered with.
type Style string

const (
	StyleSimple     Style = "simple"
	StyleThumbnail  Style = "thumbnail"
	StyleCard       Style = "card"
	StyleBackground Style = "background"
)

func ParseStyle(s string) Style {
	switch Style(s) {
	case StyleThumbnail, StyleCard, StyleBackground:
		return Style(s)
	default:
		return StyleSimple
	}
}

type Link struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	UserEmail   string `json:"userEmail,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Style       Style  `json:"style"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"isActive"`
	ClickCount  int    `json:"clickCount"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// SaveLinkInput is the payload of save_link. Order zero lets the store
// append the link at the end.
type SaveLinkInput struct {
	UserID      string `json:"userId,omitempty"`
	UserEmail   string `json:"userEmail,omitempty"`
	Title       string `json:"title" validate:"required,notblank"`
	URL         string `json:"url" validate:"required,notblank"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Style       Style  `json:"style" validate:"link_style"`
	Order       int    `json:"order,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// Update is a partial link change. Nil fields are not sent.
type Update struct {
	Title       *string `json:"title,omitempty"`
	URL         *string `json:"url,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Style       *Style  `json:"style,omitempty"`
	Order       *int    `json:"order,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

func (u Update) IsEmpty() bool {
	return u.Title == nil && u.URL == nil && u.Category == nil && u.Description == nil &&
		u.Image == nil && u.Style == nil && u.Order == nil && u.IsActive == nil
}

// Apply returns l with every non-nil field of u written over it.
func (u Update) Apply(l Link) Link {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.URL != nil {
		l.URL = *u.URL
	}
	if u.Category != nil {
		l.Category = *u.Category
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.Image != nil {
		l.Image = *u.Image
	}
	if u.Style != nil {
		l.Style = *u.Style
	}
	if u.Order != nil {
		l.Order = *u.Order
	}
	if u.IsActive != nil {
		l.IsActive = *u.IsActive
	}
	return l
}

// BatchUpdate is one entry of batch_update_links.
type BatchUpdate struct {
	LinkID  string `json:"linkId"`
	Updates Update `json:"updates"`
}

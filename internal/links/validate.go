package links

import (
	"errors"
	"regexp"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/constants"
	appvalidation "github.com/IgorGrieder/linkhub/internal/infrastructure/validation"
	"github.com/go-playground/validator/v10"
)

// LinkData is what an editor form submits.
type LinkData struct {
	Title       string `json:"title" validate:"required,notblank,max=100"`
	URL         string `json:"url" validate:"required,absurl"`
	Category    string `json:"category" validate:"max=20"`
	Description string `json:"description" validate:"max=500"`
}

type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

var fieldMessages = map[string]map[string]string{
	"title": {
		"required": constants.MsgTitleRequired,
		"notblank": constants.MsgTitleRequired,
		"max":      constants.MsgTitleTooLong,
	},
	"url": {
		"required": constants.MsgURLRequired,
		"absurl":   constants.MsgURLInvalid,
	},
	"category": {
		"max": constants.MsgCategoryTooLong,
	},
	"description": {
		"max": constants.MsgDescriptionTooLong,
	},
}

// ValidateLinkData checks lengths and URL shape. It makes no network call.
func ValidateLinkData(d LinkData) ValidationResult {
	err := appvalidation.Validate(d)
	if err == nil {
		return ValidationResult{IsValid: true, Errors: []string{}}
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return ValidationResult{IsValid: false, Errors: []string{constants.MsgUnknownError}}
	}

	msgs := make([]string, 0, len(vErrs))
	for _, e := range vErrs {
		if msg, ok := fieldMessages[e.Field()][e.Tag()]; ok {
			msgs = append(msgs, msg)
		}
	}
	return ValidationResult{IsValid: false, Errors: msgs}
}

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// NormalizeURL prefixes https:// when raw has no scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || schemePattern.MatchString(raw) {
		return raw
	}
	return "https://" + raw
}

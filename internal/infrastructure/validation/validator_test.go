package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Name  string `json:"name" validate:"notblank"`
	URL   string `json:"url" validate:"absurl"`
	Style string `json:"style" validate:"link_style"`
}

func TestCustomTags(t *testing.T) {
	tests := []struct {
		name      string
		in        sample
		wantField string
	}{
		{"valid http", sample{Name: "a", URL: "http://a.com", Style: "card"}, ""},
		{"valid mailto", sample{Name: "a", URL: "mailto:me@a.com"}, ""},
		{"blank name", sample{Name: "  ", URL: "http://a.com"}, "name"},
		{"no scheme", sample{Name: "a", URL: "a.com"}, "url"},
		{"scheme only", sample{Name: "a", URL: "https://"}, "url"},
		{"unknown style", sample{Name: "a", URL: "http://a.com", Style: "neon"}, "style"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var vErrs validator.ValidationErrors
			if !errors.As(err, &vErrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if vErrs[0].Field() != tt.wantField {
				t.Errorf("field = %q, want %q", vErrs[0].Field(), tt.wantField)
			}
		})
	}
}

package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Template placeholders recognized by RenderTemplate.
const (
	PlaceholderUser  = "{user}"
	PlaceholderLevel = "{level}"
)

var placeholderPattern = regexp.MustCompile(`\{[a-z]+\}`)

// TemplateValues carries the substitutions available to a message template.
type TemplateValues struct {
	User  string
	Level int
}

// RenderTemplate substitutes the named placeholders in tmpl. Unknown
// placeholder tokens are left untouched so a typo in a template shows up
// verbatim instead of silently disappearing.
func RenderTemplate(tmpl string, values TemplateValues) string {
	out := strings.ReplaceAll(tmpl, PlaceholderUser, values.User)
	out = strings.ReplaceAll(out, PlaceholderLevel, fmt.Sprintf("%d", values.Level))
	return out
}

// ValidateTemplate reports any placeholder tokens in tmpl that the renderer
// does not recognize.
func ValidateTemplate(tmpl string) error {
	var unknown []string

	for _, token := range placeholderPattern.FindAllString(tmpl, -1) {
		if token != PlaceholderUser && token != PlaceholderLevel {
			unknown = append(unknown, token)
		}
	}

	if len(unknown) > 0 {
		return fmt.Errorf("unknown template placeholders: %s", strings.Join(unknown, ", "))
	}

	return nil
}

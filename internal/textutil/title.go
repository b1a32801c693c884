package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayTitle normalizes whitespace in a title and applies title casing for
// presentation in tables and notifications.
func DisplayTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return ""
	}
	return cases.Title(language.Und, cases.NoLower).String(title)
}

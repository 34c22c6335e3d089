package parse

import (
	"regexp"
	"strings"
)

var (
	connectorPattern  = regexp.MustCompile(`(?i)\b(?:is|was|are|were|be|been|being|on|at|in)\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SynthesizeTitle builds a display title from the original input. The date
// span, then the first occurrence of keyword, then connector words are removed
// in that order before whitespace is collapsed. An empty result falls back to
// the category name, or to the trimmed input for CategoryOther.
func SynthesizeTitle(original string, span Span, keyword string, category Category) string {
	title := original

	if !span.IsZero() && span.End <= len(title) && title[span.Start:span.End] == span.Text {
		title = title[:span.Start] + title[span.End:]
	}

	if keyword != "" {
		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword))
		if loc := pattern.FindStringIndex(title); loc != nil {
			title = title[:loc[0]] + title[loc[1]:]
		}
	}

	title = connectorPattern.ReplaceAllString(title, "")
	title = whitespacePattern.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	if title != "" {
		return title
	}
	if category != CategoryOther && category != "" {
		return category.Title()
	}
	return strings.TrimSpace(original)
}

package parse

import (
	"strings"
)

// Category is the semantic type of a reminder.
type Category string

const (
	CategoryBirthday    Category = "birthday"
	CategoryAnniversary Category = "anniversary"
	CategoryMedical     Category = "medical"
	CategoryMemorial    Category = "memorial"
	CategoryOther       Category = "other"
)

// categoryKeywords is scanned in declaration order; the first category with a
// matching keyword wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryBirthday, []string{"birthday", "bday"}},
	{CategoryAnniversary, []string{"anniversary"}},
	{CategoryMedical, []string{"surgery", "doctor", "appointment", "checkup"}},
	{CategoryMemorial, []string{"memorial", "death"}},
}

// Categories returns every category, "other" last.
func Categories() []Category {
	out := make([]Category, 0, len(categoryKeywords)+1)
	for _, entry := range categoryKeywords {
		out = append(out, entry.category)
	}
	return append(out, CategoryOther)
}

// ParseCategory converts a stored type name into a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return CategoryOther, false
}

// Title returns the capitalized category name ("Birthday").
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Classify returns the first category whose keyword occurs anywhere in text
// (case-insensitive), together with that keyword. It returns CategoryOther and
// an empty keyword when nothing matches.
func Classify(text string) (Category, string) {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.category, keyword
			}
		}
	}
	return CategoryOther, ""
}

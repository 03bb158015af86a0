// Package catalog holds the course catalog and its search filter.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Level is a course difficulty level.
type Level string

// Course levels.
const (
	Beginner     Level = "Beginner"
	Intermediate Level = "Intermediate"
	Advanced     Level = "Advanced"
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Course is one catalog entry.
type Course struct {
	Code          string `yaml:"code" json:"code"`
	Name          string `yaml:"name" json:"name"`
	Level         Level  `yaml:"level" json:"level"`
	Duration      string `yaml:"duration" json:"duration"`
	Credits       int    `yaml:"credits" json:"credits"`
	Prerequisites string `yaml:"prerequisites" json:"prerequisites"`
}

// Filter returns the courses whose name or code contains query, ignoring
// case. Catalog order is preserved and an empty query matches every course.
// The result is always a new slice.
func Filter(courses []Course, query string) []Course {
	caser := cases.Lower(language.Und)
	needle := caser.String(query)

	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if contains(caser, c, needle) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether a single course satisfies query.
func Matches(c Course, query string) bool {
	caser := cases.Lower(language.Und)
	return contains(caser, c, caser.String(query))
}

// contains expects needle to be lowercased already.
func contains(caser cases.Caser, c Course, needle string) bool {
	return strings.Contains(caser.String(c.Name), needle) ||
		strings.Contains(caser.String(c.Code), needle)
}

package content

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/garyellow/itdept-site/internal/errors"
)

// ErrEmptyNews means the carousel would have nothing to show.
var ErrEmptyNews = fmt.Errorf("%w: at least one news item is required", apperrors.ErrInvalidContent)

// Rule is one named group of content checks.
type Rule struct {
	Name  string
	Check func(*Content) []error
}

// Rules returns the checks Validate applies, in order.
func Rules() []Rule {
	return []Rule{
		{Name: "news", Check: (*Content).validateNews},
		{Name: "courses", Check: (*Content).validateCourses},
		{Name: "sections", Check: (*Content).validateSections},
	}
}

// Validate checks the invariants the page relies on. All problems are
// reported together.
func (c *Content) Validate() error {
	var errs []error
	for _, r := range Rules() {
		errs = append(errs, r.Check(c)...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *Content) validateNews() []error {
	var errs []error
	if len(c.News) == 0 {
		errs = append(errs, ErrEmptyNews)
	}
	for i, n := range c.News {
		if strings.TrimSpace(n.Title) == "" {
			errs = append(errs, apperrors.NewValidationError(fmt.Sprintf("news[%d].title", i), "must not be empty"))
		}
	}
	return errs
}

func (c *Content) validateCourses() []error {
	var errs []error
	codes := make(map[string]int, len(c.Courses))
	names := make(map[string]int, len(c.Courses))

	for i, course := range c.Courses {
		field := func(name string) string { return fmt.Sprintf("courses[%d].%s", i, name) }

		code := strings.TrimSpace(course.Code)
		name := strings.TrimSpace(course.Name)
		if code == "" {
			errs = append(errs, apperrors.NewValidationError(field("code"), "must not be empty"))
		} else if prev, dup := codes[code]; dup {
			errs = append(errs, apperrors.NewValidationError(field("code"), fmt.Sprintf("duplicates courses[%d]", prev)))
		} else {
			codes[code] = i
		}
		if name == "" {
			errs = append(errs, apperrors.NewValidationError(field("name"), "must not be empty"))
		} else if prev, dup := names[name]; dup {
			errs = append(errs, apperrors.NewValidationError(field("name"), fmt.Sprintf("duplicates courses[%d]", prev)))
		} else {
			names[name] = i
		}
		if !course.Level.Valid() {
			errs = append(errs, apperrors.NewValidationError(field("level"), fmt.Sprintf("unknown level %q", course.Level)))
		}
		if course.Credits <= 0 {
			errs = append(errs, apperrors.NewValidationError(field("credits"), "must be positive"))
		}
	}
	return errs
}

func (c *Content) validateSections() []error {
	var errs []error
	known := Regions()
	seen := make(map[string]bool, len(c.Sections))

	for i, s := range c.Sections {
		field := fmt.Sprintf("sections[%d].id", i)
		switch {
		case !slices.Contains(known, s.ID):
			errs = append(errs, apperrors.NewValidationError(field, fmt.Sprintf("unknown region %q", s.ID)))
		case seen[s.ID]:
			errs = append(errs, apperrors.NewValidationError(field, fmt.Sprintf("duplicate region %q", s.ID)))
		default:
			seen[s.ID] = true
		}
	}
	for _, id := range known {
		if !seen[id] {
			errs = append(errs, apperrors.NewValidationError("sections", fmt.Sprintf("missing region %q", id)))
		}
	}
	return errs
}

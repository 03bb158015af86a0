// Package page composes the single-page view from content and per-visitor
// state, and owns the embedded templates and static assets.
package page

import (
	"fmt"
	"time"

	"github.com/garyellow/itdept-site/internal/carousel"
	"github.com/garyellow/itdept-site/internal/catalog"
	"github.com/garyellow/itdept-site/internal/content"
	"github.com/garyellow/itdept-site/internal/theme"
	"github.com/garyellow/itdept-site/internal/visibility"
)

// State is everything that varies between renders of the page.
type State struct {
	Dark      bool
	Query     string   // filters the course list
	Input     string   // search box text as typed; Query when empty
	NewsIndex int      // stored value, normalized by Build
	Visible   []string // regions already seen
}

// SectionView is one observable region.
type SectionView struct {
	ID      string
	Title   string
	Visible bool
}

// NewsView is the item the carousel currently shows.
type NewsView struct {
	Item     content.NewsItem
	Index    int
	Position int // 1-based, for display
	Total    int
}

// View is the data handed to the page template.
type View struct {
	Site       content.Site
	Dark       bool
	ThemeClass string
	Query      string
	Input      string

	Sections map[string]SectionView
	News     NewsView

	Achievements []content.Feature
	Programs     []content.Feature
	Facilities   []content.Feature
	Courses      []catalog.Course
	CourseTotal  int
	Events       []content.Event
	Stats        []content.Stat
	Contact      []content.ContactEntry

	Year int
}

// Build derives the view. The stored news index is normalized into range
// and the course list is filtered by the query.
func Build(c *content.Content, st State, now time.Time) (View, error) {
	idx, err := carousel.New(len(c.News))
	if err != nil {
		return View{}, fmt.Errorf("build page: %w", err)
	}
	idx = idx.At(st.NewsIndex)

	input := st.Input
	if input == "" {
		input = st.Query
	}

	seen := visibility.NewSet(st.Visible...)
	sections := make(map[string]SectionView, len(c.Sections))
	for _, s := range c.Sections {
		sections[s.ID] = SectionView{ID: s.ID, Title: s.Title, Visible: seen.Has(s.ID)}
	}

	return View{
		Site:       c.Site,
		Dark:       st.Dark,
		ThemeClass: theme.Class(st.Dark),
		Query:      st.Query,
		Input:      input,
		Sections:   sections,
		News:       NewsAt(c, idx),

		Achievements: c.Achievements,
		Programs:     c.Programs,
		Facilities:   c.Facilities,
		Courses:      catalog.Filter(c.Courses, st.Query),
		CourseTotal:  len(c.Courses),
		Events:       c.Events,
		Stats:        c.Stats,
		Contact:      c.Contact,

		Year: now.Year(),
	}, nil
}

// NewsAt returns the news view at idx.
func NewsAt(c *content.Content, idx carousel.Index) NewsView {
	return NewsView{
		Item:     c.News[idx.Pos()],
		Index:    idx.Pos(),
		Position: idx.Pos() + 1,
		Total:    idx.Len(),
	}
}

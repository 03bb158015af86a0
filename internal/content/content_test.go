package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/itdept-site/internal/catalog"
	apperrors "github.com/garyellow/itdept-site/internal/errors"
)

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Department of Information Technology", c.Site.Name)
	assert.Len(t, c.News, 3)
	assert.Len(t, c.Achievements, 4)
	assert.Len(t, c.Programs, 6)
	assert.Len(t, c.Facilities, 4)
	assert.Len(t, c.Courses, 6)
	assert.Len(t, c.Events, 3)
	assert.Len(t, c.Stats, 4)
	assert.Len(t, c.Contact, 3)

	assert.Equal(t, "New AI Research Lab Opening", c.News[0].Title)
	assert.Equal(t, "March 15, 2024", c.News[0].Date)
	assert.Equal(t, catalog.Course{
		Code: "CS301", Name: "Artificial Intelligence", Level: catalog.Advanced,
		Duration: "16 weeks", Credits: 4, Prerequisites: "CS201, MATH201",
	}, c.Courses[2])
	assert.Equal(t, "+1 (555) 123-4567", c.Contact[1].Value)
	assert.Equal(t, "1000+", c.Stats[0].Number)
}

func TestLoadEmbedded_SectionsInPageOrder(t *testing.T) {
	t.Parallel()
	c, err := Load()
	require.NoError(t, err)

	ids := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, Regions(), ids)

	s, ok := c.Section(RegionCourses)
	require.True(t, ok)
	assert.Equal(t, "Find Courses", s.Title)

	_, ok = c.Section("footer")
	assert.False(t, ok)
}

func TestLoadEmbedded_RendersMarkdown(t *testing.T) {
	t.Parallel()
	c, err := Load()
	require.NoError(t, err)

	for _, n := range c.News {
		assert.True(t, strings.HasPrefix(string(n.DescriptionHTML), "<p>"), n.Title)
	}
	for _, e := range c.Events {
		assert.NotEmpty(t, e.DescriptionHTML, e.Title)
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()
	c, err := Load()
	require.NoError(t, err)

	counts := c.Counts()
	assert.Len(t, counts, len(Regions()))
	assert.Equal(t, 6, counts[RegionCourses])
}

const sections = `
sections:
  - id: news
  - id: achievements
  - id: programs
  - id: facilities
  - id: courses
  - id: events
  - id: stats
  - id: contact
`

const oneNews = `
news:
  - title: Only item
    date: today
    description: "**bold** <script>alert(1)</script>"
`

func TestParse_EmptyNewsIsFatal(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(sections))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyNews)
	assert.ErrorIs(t, err, apperrors.ErrInvalidContent)
}

func TestParse_EmptyDocument(t *testing.T) {
	t.Parallel()
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrEmptyNews)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte(sections + oneNews + "\nsponsors: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sponsors")
}

func TestParse_RawHTMLIsDropped(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(sections + oneNews))
	require.NoError(t, err)

	html := string(c.News[0].DescriptionHTML)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestValidate_Courses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		courses string
		field   string
	}{
		{
			name: "missing code",
			courses: `
courses:
  - {code: "", name: A, level: Beginner, credits: 3}`,
			field: "courses[0].code",
		},
		{
			name: "duplicate code",
			courses: `
courses:
  - {code: CS1, name: A, level: Beginner, credits: 3}
  - {code: CS1, name: B, level: Beginner, credits: 3}`,
			field: "courses[1].code",
		},
		{
			name: "duplicate name",
			courses: `
courses:
  - {code: CS1, name: A, level: Beginner, credits: 3}
  - {code: CS2, name: A, level: Beginner, credits: 3}`,
			field: "courses[1].name",
		},
		{
			name: "unknown level",
			courses: `
courses:
  - {code: CS1, name: A, level: Expert, credits: 3}`,
			field: "courses[0].level",
		},
		{
			name: "zero credits",
			courses: `
courses:
  - {code: CS1, name: A, level: Advanced, credits: 0}`,
			field: "courses[0].credits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(sections + oneNews + tt.courses))
			require.Error(t, err)

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, err.Error(), tt.field)
			assert.True(t, apperrors.IsInvalidInput(err))
		})
	}
}

func TestValidate_Sections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{
			name:    "unknown region",
			doc:     sections + "  - id: footer\n",
			message: `unknown region "footer"`,
		},
		{
			name:    "duplicate region",
			doc:     sections + "  - id: news\n",
			message: `duplicate region "news"`,
		},
		{
			name: "missing region",
			doc: `
sections:
  - id: news
`,
			message: `missing region "contact"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.doc + oneNews))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()
	c := &Content{
		Courses: []catalog.Course{{Code: "", Name: "", Level: "x", Credits: -1}},
	}

	err := c.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"news item", "courses[0].code", "courses[0].name", "courses[0].level", "courses[0].credits", "missing region"} {
		assert.Contains(t, msg, want)
	}
}

func TestRegions(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"news", "achievements", "programs", "facilities", "courses", "events", "stats", "contact"}, Regions())

	r := Regions()
	r[0] = "mutated"
	assert.Equal(t, "news", Regions()[0], "Regions must return a fresh slice")
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()
	out, err := RenderMarkdown("See [the lab](https://example.edu) ~~soon~~")
	require.NoError(t, err)
	assert.Contains(t, string(out), `<a href="https://example.edu">the lab</a>`)
	assert.Contains(t, string(out), "<del>soon</del>")
}

func TestRules_EmbeddedContentPassesEach(t *testing.T) {
	t.Parallel()
	c, err := Decode(Embedded())
	require.NoError(t, err)

	names := make([]string, 0, len(Rules()))
	for _, r := range Rules() {
		names = append(names, r.Name)
		assert.Empty(t, r.Check(c), r.Name)
	}
	assert.Equal(t, []string{"news", "courses", "sections"}, names)
}

func TestDecode_DoesNotValidate(t *testing.T) {
	t.Parallel()
	c, err := Decode([]byte("site:\n  name: Empty\n"))
	require.NoError(t, err)
	assert.Equal(t, "Empty", c.Site.Name)
	assert.ErrorIs(t, c.Validate(), ErrEmptyNews)
}

// Package content loads the fixed page content: hero, news, achievements,
// programs, facilities, courses, events, stats and contact details.
//
// The content ships inside the binary as a YAML document and is validated
// once at startup. News and event descriptions are Markdown and are rendered
// to HTML at load time.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/garyellow/itdept-site/internal/catalog"
)

//go:embed content.yaml
var embedded []byte

// Region ids of the observable page sections, in page order.
const (
	RegionNews         = "news"
	RegionAchievements = "achievements"
	RegionPrograms     = "programs"
	RegionFacilities   = "facilities"
	RegionCourses      = "courses"
	RegionEvents       = "events"
	RegionStats        = "stats"
	RegionContact      = "contact"
)

// Regions returns the observable region ids in page order.
func Regions() []string {
	return []string{
		RegionNews,
		RegionAchievements,
		RegionPrograms,
		RegionFacilities,
		RegionCourses,
		RegionEvents,
		RegionStats,
		RegionContact,
	}
}

// Content is the whole page content.
type Content struct {
	Site         Site             `yaml:"site"`
	Sections     []Section        `yaml:"sections"`
	News         []NewsItem       `yaml:"news"`
	Achievements []Feature        `yaml:"achievements"`
	Programs     []Feature        `yaml:"programs"`
	Facilities   []Feature        `yaml:"facilities"`
	Courses      []catalog.Course `yaml:"courses"`
	Events       []Event          `yaml:"events"`
	Stats        []Stat           `yaml:"stats"`
	Contact      []ContactEntry   `yaml:"contact"`
}

// Site holds the hero banner and footer owner.
type Site struct {
	Name      string `yaml:"name"`
	Tagline   string `yaml:"tagline"`
	HeroImage string `yaml:"hero_image"`
}

// Section names a region and its heading. Title may be empty.
type Section struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// NewsItem is one carousel entry.
type NewsItem struct {
	Title       string `yaml:"title" json:"title"`
	Date        string `yaml:"date" json:"date"`
	Description string `yaml:"description" json:"description"`
	Image       string `yaml:"image" json:"image"`

	DescriptionHTML template.HTML `yaml:"-" json:"description_html"`
}

// Feature is an icon card used by achievements, programs and facilities.
type Feature struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Event is an upcoming event.
type Event struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`

	DescriptionHTML template.HTML `yaml:"-"`
}

// Stat is a headline figure.
type Stat struct {
	Number   string `yaml:"number"`
	Label    string `yaml:"label"`
	Sublabel string `yaml:"sublabel"`
}

// ContactEntry is one way to reach the department.
type ContactEntry struct {
	Kind  string `yaml:"kind"` // email, phone, address
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Note  string `yaml:"note"`
}

// Load parses and validates the embedded content.
func Load() (*Content, error) {
	return Parse(embedded)
}

// Parse decodes a content document, validates it and renders Markdown
// descriptions.
func Parse(data []byte) (*Content, error) {
	c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := c.render(); err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}
	return c, nil
}

// Decode only decodes a content document, rejecting unknown fields.
func Decode(data []byte) (*Content, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Content
	// An empty document decodes to io.EOF and is left to Validate.
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return &c, nil
}

// Embedded returns the raw content document compiled into the binary.
func Embedded() []byte {
	return bytes.Clone(embedded)
}

// Section returns the section with the given id.
func (c *Content) Section(id string) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Counts returns the number of items per list, keyed by section id.
func (c *Content) Counts() map[string]int {
	return map[string]int{
		RegionNews:         len(c.News),
		RegionAchievements: len(c.Achievements),
		RegionPrograms:     len(c.Programs),
		RegionFacilities:   len(c.Facilities),
		RegionCourses:      len(c.Courses),
		RegionEvents:       len(c.Events),
		RegionStats:        len(c.Stats),
		RegionContact:      len(c.Contact),
	}
}

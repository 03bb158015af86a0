package page

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"

	"github.com/garyellow/itdept-site/internal/content"
	"github.com/garyellow/itdept-site/internal/stringutil"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// TemplateName is the entry template for the whole page.
const TemplateName = "page.html"

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New(TemplateName).Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // the embed directive guarantees the directory
	}
	return sub
}

// Funcs returns the template helpers.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"section":     func(v View, id string) SectionView { return v.Sections[id] },
		"contactHref": ContactHref,
	}
}

// ContactHref returns a link for a contact entry, or "" when the entry is
// not linkable.
func ContactHref(e content.ContactEntry) template.URL {
	switch e.Kind {
	case "email":
		return template.URL("mailto:" + url.PathEscape(e.Value)) //nolint:gosec // content is embedded
	case "phone":
		return template.URL("tel:" + stringutil.PhoneDigits(e.Value)) //nolint:gosec // digits only
	}
	return ""
}

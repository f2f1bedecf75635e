// Package views holds the HTML templates and the fiber template engine that
// renders them.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var files embed.FS

// Layout wraps every full page.
const Layout = "layouts/base"

// Funcs are the helpers that depend on runtime wiring.
type Funcs struct {
	// MediaURL maps a stored file path to its public URL.
	MediaURL func(path string) string
	// ThumbURL maps a stored image path to the URL used on list pages.
	ThumbURL func(path string) string
}

// Templates returns the embedded template tree.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// New builds the engine over the embedded templates. reload re-parses them
// on every render, for development.
func New(fn Funcs, reload bool) *html.Engine {
	engine := html.NewFileSystem(http.FS(Templates()), ".html")
	engine.Reload(reload)

	identity := func(p string) string { return p }
	if fn.MediaURL == nil {
		fn.MediaURL = identity
	}
	if fn.ThumbURL == nil {
		fn.ThumbURL = fn.MediaURL
	}

	for name, f := range (template.FuncMap{
		"mediaURL":      fn.MediaURL,
		"thumbURL":      fn.ThumbURL,
		"truncatewords": TruncateWords,
		"linebreaksbr":  LineBreaks,
		"date":          FormatDate,
		"add":           func(a, b int) int { return a + b },
		"query":         PageQuery,
	}) {
		engine.AddFunc(name, f)
	}
	return engine
}

// TruncateWords keeps the first n words and appends an ellipsis when text
// was cut.
func TruncateWords(text string, n int) string {
	words := strings.FieldsFunc(text, unicode.IsSpace)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

// LineBreaks escapes text and turns newlines into <br>.
func LineBreaks(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// FormatDate renders t as "2 January 2006".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

// PageQuery builds the ?page= query string for paginator links.
func PageQuery(page int) string {
	return fmt.Sprintf("?page=%d", page)
}

// Package templates renders the dashboard page and the fragments patched
// into it over server-sent events.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

var printer = message.NewPrinter(language.English)

// html accumulates markup and keeps the first write error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) printf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// attr writes ` name="value"` with value escaped.
func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err == nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}

// Query encodes criteria as the query string understood by every endpoint.
func Query(c models.FilterCriteria) string {
	v := url.Values{}
	if c.Region != "" {
		v.Set("region", c.Region)
	}
	if c.Start != nil {
		v.Set("start", c.Start.Format(models.DateLayout))
	}
	if c.End != nil {
		v.Set("end", c.End.Format(models.DateLayout))
	}
	for _, r := range c.Compare {
		v.Add("compare", r)
	}
	return v.Encode()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func count(v float64) string {
	return printer.Sprintf("%.0f", v)
}

func dateValue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

func title(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

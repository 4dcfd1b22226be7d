// Package view renders HTML pages from embedded pongo2 templates.
//
// A page render happens in two passes: the content template is executed
// first, and its output is handed to the layout template as the
// `content` variable. Context entries become template variables; output
// is returned as one string, so nothing is written to the response
// until the whole page rendered successfully.
package view

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/polarbid/polarbid/internal/core/format"
)

//go:embed templates/*.html
var templatesFS embed.FS

// layoutName is the outer page shell every RenderPage call composes
// into.
const layoutName = "layout"

// =============================================================================
// Renderer
// =============================================================================

// Renderer holds the compiled template set. Templates are compiled once
// at construction; rendering is read-only and safe for concurrent use.
type Renderer struct {
	templates map[string]*pongo2.Template
}

// New compiles every embedded template. A template that fails to
// compile fails construction; there is no lazy path that could surface
// a syntax error mid-request.
func New() (*Renderer, error) {
	registerFilters()

	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("view: failed to read templates: %w", err)
	}

	templates := make(map[string]*pongo2.Template, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		data, err := templatesFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("view: failed to read template %s: %w", entry.Name(), err)
		}
		tpl, err := pongo2.FromString(string(data))
		if err != nil {
			return nil, fmt.Errorf("view: failed to compile template %s: %w", entry.Name(), err)
		}
		templates[strings.TrimSuffix(entry.Name(), ".html")] = tpl
	}

	if _, ok := templates[layoutName]; !ok {
		return nil, fmt.Errorf("view: layout template missing")
	}

	return &Renderer{templates: templates}, nil
}

// Render executes one template with the given context and returns the
// produced markup. An unknown name is an error: there is no fallback
// template and the request cannot be served.
func (r *Renderer) Render(name string, ctx map[string]any) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("view: unknown template %q", name)
	}
	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("view: failed to render %q: %w", name, err)
	}
	return out, nil
}

// RenderPage renders the named content template, then embeds its output
// as `content` in the layout. base carries the layout's own variables
// (title, current user, category nav).
func (r *Renderer) RenderPage(name string, ctx, base map[string]any) (string, error) {
	content, err := r.Render(name, ctx)
	if err != nil {
		return "", err
	}

	layoutCtx := make(map[string]any, len(base)+1)
	for k, v := range base {
		layoutCtx[k] = v
	}
	layoutCtx["content"] = content

	return r.Render(layoutName, layoutCtx)
}

// =============================================================================
// Filters
// =============================================================================

var filtersOnce sync.Once

// registerFilters exposes the formatting utilities to templates.
// pongo2 filter registration is global, hence the once.
func registerFilters() {
	filtersOnce.Do(func() {
		pongo2.RegisterFilter("money", filterMoney)
		pongo2.RegisterFilter("timeago", filterTimeAgo)
		pongo2.RegisterFilter("timeleft", filterTimeLeft)
		pongo2.RegisterFilter("plural", filterPlural)
	})
}

// filterMoney renders a price: {{ lot.CurrentPrice|money }} -> "10 500 ₽".
func filterMoney(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	v := in.Float()
	if in.IsInteger() {
		v = float64(in.Integer())
	}
	return pongo2.AsValue(format.Currency(v)), nil
}

// filterTimeAgo renders a past timestamp relative to now:
// {{ bid.CreatedAt|timeago }} -> "5 минут назад".
func filterTimeAgo(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, ok := in.Interface().(time.Time)
	if !ok {
		return nil, &pongo2.Error{Sender: "filter:timeago", OrigError: fmt.Errorf("expected time.Time, got %T", in.Interface())}
	}
	return pongo2.AsValue(format.RelativeTime(t, time.Now())), nil
}

// filterTimeLeft renders the countdown to a lot's end date:
// {{ lot.EndAt|timeleft }} -> "49:30".
func filterTimeLeft(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, ok := in.Interface().(time.Time)
	if !ok {
		return nil, &pongo2.Error{Sender: "filter:timeleft", OrigError: fmt.Errorf("expected time.Time, got %T", in.Interface())}
	}
	hours, minutes, _ := format.RemainingTime(t, time.Now())
	return pongo2.AsValue(hours + ":" + minutes), nil
}

// filterPlural picks the plural form of its comma-separated parameter:
// {{ lot.BidCount|plural:"ставка,ставки,ставок" }}.
func filterPlural(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	parts := strings.Split(param.String(), ",")
	if len(parts) != 3 {
		return nil, &pongo2.Error{Sender: "filter:plural", OrigError: fmt.Errorf("plural wants three comma-separated forms, got %q", param.String())}
	}
	return pongo2.AsValue(format.PluralForm(in.Integer(), parts[0], parts[1], parts[2])), nil
}

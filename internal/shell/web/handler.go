// Package web provides the HTTP handlers for the Polarbid site. Every
// route is one page: GET renders it, POST handles its form submission
// and redirects on success. Validation failures re-render the form with
// the entered values and per-field messages.
package web

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/polarbid/polarbid/internal/core/domain"
	"github.com/polarbid/polarbid/internal/i18n"
	"github.com/polarbid/polarbid/internal/shell/session"
	"github.com/polarbid/polarbid/internal/shell/store"
	"github.com/polarbid/polarbid/internal/shell/view"
)

//go:embed static/*
var staticFS embed.FS

// =============================================================================
// Handler
// =============================================================================

// Config holds configuration for the web handler.
type Config struct {
	Store      store.Store
	View       *view.Renderer
	Sessions   *session.Manager
	Logger     *slog.Logger
	UploadsDir string          // where lot images are written
	Now        func() time.Time // injectable clock
}

// Handler serves the site's pages.
type Handler struct {
	store      store.Store
	view       *view.Renderer
	sessions   *session.Manager
	logger     *slog.Logger
	uploadsDir string
	now        func() time.Time
}

// NewHandler creates the web handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = "./data/uploads"
	}
	return &Handler{
		store:      cfg.Store,
		view:       cfg.View,
		sessions:   cfg.Sessions,
		logger:     cfg.Logger,
		uploadsDir: cfg.UploadsDir,
		now:        cfg.Now,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.withUser)

	r.Get("/", h.handleIndex)
	r.Get("/search", h.handleSearch)
	r.Get("/categories/{id}", h.handleCategory)

	r.Get("/lots/add", h.handleAddLotForm)
	r.Post("/lots/add", h.handleAddLotSubmit)
	r.Get("/lots/{id}", h.handleLot)
	r.Post("/lots/{id}", h.handlePlaceBid)

	r.Get("/login", h.handleLoginForm)
	r.Post("/login", h.handleLoginSubmit)
	r.Get("/signup", h.handleSignupForm)
	r.Post("/signup", h.handleSignupSubmit)
	r.Post("/logout", h.handleLogout)

	r.Get("/my-bids", h.handleMyBids)

	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploadsDir))))

	r.NotFound(h.handleNotFound)

	return r
}

// =============================================================================
// Request Context
// =============================================================================

type ctxKey int

const userKey ctxKey = iota

// currentUser returns the authenticated user, or nil.
func currentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

// requireUser returns the authenticated user, redirecting anonymous
// requests to the login page. A nil return means the response has been
// written.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user := currentUser(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil
	}
	return user
}

// =============================================================================
// Rendering Helpers
// =============================================================================

// render writes a full page: the named content template composed into
// the layout, with the category nav and current user in the shell.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, ctx map[string]any) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	base := map[string]any{
		"title":      title,
		"user":       currentUser(r.Context()),
		"categories": categories,
		"query":      r.URL.Query().Get("q"),
	}

	html, err := h.view.RenderPage(name, ctx, base)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(html))
}

// serverError logs the failure and renders a bare 500 page. The error
// page skips the store so a dead database still produces a response.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)

	html, renderErr := h.view.RenderPage("error",
		map[string]any{"code": http.StatusInternalServerError, "message": i18n.T("page.serverError")},
		map[string]any{"title": "500"},
	)
	if renderErr != nil {
		http.Error(w, i18n.T("page.serverError"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(html))
}

// handleNotFound renders the 404 page.
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", "404", map[string]any{
		"code":    http.StatusNotFound,
		"message": i18n.T("page.notFound"),
	})
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

package web

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/polarbid/polarbid/internal/core/domain"
	"github.com/polarbid/polarbid/internal/core/forms"
	"github.com/polarbid/polarbid/internal/i18n"
	"github.com/polarbid/polarbid/internal/shell/store"
)

// =============================================================================
// Signup
// =============================================================================

func (h *Handler) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", "Регистрация", map[string]any{
		"values": forms.Values{},
		"errors": forms.Errors{},
	})
}

func (h *Handler) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	values := forms.Values{
		"email":    r.PostFormValue("email"),
		"password": r.PostFormValue("password"),
		"name":     r.PostFormValue("name"),
		"contacts": r.PostFormValue("contacts"),
	}

	validators := map[string]forms.Validator{
		"email": forms.Chain(
			forms.Email(),
			forms.EmailNotTaken(func(email string) (bool, error) {
				return h.store.EmailExists(r.Context(), email)
			}),
		),
	}

	errs, err := forms.Validate(values, validators, []string{"email", "password", "name"})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !errs.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, "signup", "Регистрация", map[string]any{
			"values": values,
			"errors": errs,
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(values["password"]), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	user := &domain.User{
		Email:        values["email"],
		Name:         values["name"],
		Contacts:     values["contacts"],
		PasswordHash: string(hash),
	}
	err = h.store.CreateUser(r.Context(), user)
	if errors.Is(err, store.ErrDuplicateEmail) {
		// Lost the race with a concurrent registration.
		errs["email"] = i18n.T("form.emailTaken")
		h.render(w, r, http.StatusUnprocessableEntity, "signup", "Регистрация", map[string]any{
			"values": values,
			"errors": errs,
		})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// =============================================================================
// Login / Logout
// =============================================================================

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", "Вход", map[string]any{
		"values": forms.Values{},
		"errors": forms.Errors{},
	})
}

func (h *Handler) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	values := forms.Values{
		"email":    r.PostFormValue("email"),
		"password": r.PostFormValue("password"),
	}

	errs, err := forms.Validate(values, nil, []string{"email", "password"})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	var user *domain.User
	if errs.Valid() {
		user, err = h.store.GetUserByEmail(r.Context(), values["email"])
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.serverError(w, r, err)
			return
		}
		if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(values["password"])) != nil {
			errs["form"] = i18n.T("form.credentials")
		}
	}

	if !errs.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, "login", "Вход", map[string]any{
			"values": values,
			"errors": errs,
		})
		return
	}

	if err := h.sessions.Start(r.Context(), w, user.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

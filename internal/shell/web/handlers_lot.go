package web

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polarbid/polarbid/internal/core/domain"
	"github.com/polarbid/polarbid/internal/core/format"
	"github.com/polarbid/polarbid/internal/core/forms"
	"github.com/polarbid/polarbid/internal/i18n"
	"github.com/polarbid/polarbid/internal/shell/store"
)

// maxUploadSize caps lot image uploads at 10 MB.
const maxUploadSize = 10 << 20

// =============================================================================
// Lot Page
// =============================================================================

func (h *Handler) handleLot(w http.ResponseWriter, r *http.Request) {
	lot, ok := h.loadLot(w, r)
	if !ok {
		return
	}
	h.renderLot(w, r, http.StatusOK, lot, forms.Values{}, forms.Errors{})
}

// loadLot fetches the {id} lot, rendering 404 when it does not exist.
func (h *Handler) loadLot(w http.ResponseWriter, r *http.Request) (*domain.Lot, bool) {
	id, err := idParam(r)
	if err != nil {
		h.handleNotFound(w, r)
		return nil, false
	}
	lot, err := h.store.GetLot(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.handleNotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}
	return lot, true
}

// renderLot renders the lot page with its bid history and, when the
// viewer may bid, the bid form with any validation state.
func (h *Handler) renderLot(w http.ResponseWriter, r *http.Request, status int, lot *domain.Lot, values forms.Values, errs forms.Errors) {
	bids, err := h.store.ListBidsForLot(r.Context(), lot.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	now := h.now()
	user := currentUser(r.Context())
	open := lot.IsOpen(now)
	canBid := user != nil && open && user.ID != lot.SellerID

	var notice string
	switch {
	case !open:
		notice = i18n.T("bid.lotClosed")
	case user != nil && user.ID == lot.SellerID:
		notice = i18n.T("bid.ownLot")
	}

	h.render(w, r, status, "lot", lot.Title, map[string]any{
		"lot":     lot,
		"bids":    bids,
		"min_bid": lot.MinBid(),
		"open":    open,
		"can_bid": canBid,
		"notice":  notice,
		"values":  values,
		"errors":  errs,
	})
}

// =============================================================================
// Place Bid
// =============================================================================

func (h *Handler) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	lot, ok := h.loadLot(w, r)
	if !ok {
		return
	}

	values := forms.Values{"cost": r.PostFormValue("cost")}
	errs, err := forms.Validate(values,
		map[string]forms.Validator{"cost": forms.Price()},
		[]string{"cost"},
	)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !errs.Valid() {
		h.renderLot(w, r, http.StatusUnprocessableEntity, lot, values, errs)
		return
	}

	amount, _ := strconv.ParseFloat(values["cost"], 64)
	now := h.now()

	// Re-check against a fresh read inside the transaction so two
	// near-simultaneous bids cannot both clear the same minimum.
	var reject string
	err = h.store.WithTx(r.Context(), func(tx store.Store) error {
		fresh, err := tx.GetLot(r.Context(), lot.ID)
		if err != nil {
			return err
		}
		switch {
		case !fresh.IsOpen(now):
			reject = i18n.T("bid.lotClosed")
			return nil
		case fresh.SellerID == user.ID:
			reject = i18n.T("bid.ownLot")
			return nil
		case amount < fresh.MinBid():
			reject = i18n.TData("form.bidTooSmall", map[string]any{
				"Min": format.Currency(fresh.MinBid()),
			})
			return nil
		}
		return tx.CreateBid(r.Context(), &domain.Bid{
			LotID:     lot.ID,
			UserID:    user.ID,
			Amount:    amount,
			CreatedAt: now,
		})
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if reject != "" {
		errs["cost"] = reject
		h.renderLot(w, r, http.StatusUnprocessableEntity, lot, values, errs)
		return
	}

	http.Redirect(w, r, "/lots/"+strconv.FormatInt(lot.ID, 10), http.StatusSeeOther)
}

// =============================================================================
// Add Lot
// =============================================================================

func (h *Handler) handleAddLotForm(w http.ResponseWriter, r *http.Request) {
	if h.requireUser(w, r) == nil {
		return
	}
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "add-lot", "Добавление лота", map[string]any{
		"categories": categories,
		"values":     forms.Values{},
		"errors":     forms.Errors{},
	})
}

func (h *Handler) handleAddLotSubmit(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.serverError(w, r, err)
		return
	}

	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	values := forms.Values{
		"title":       r.PostFormValue("title"),
		"category":    r.PostFormValue("category"),
		"description": r.PostFormValue("description"),
		"price":       r.PostFormValue("price"),
		"step":        r.PostFormValue("step"),
		"end_date":    r.PostFormValue("end_date"),
		"image":       "",
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		values["image"] = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.serverError(w, r, err)
		return
	}

	validators := map[string]forms.Validator{
		"category": forms.Category(domain.CategoryIDs(categories)),
		"price":    forms.Price(),
		"step":     forms.BidStep(),
		"end_date": forms.EndDate(h.now),
		"image":    forms.ImageExtension(),
	}
	required := []string{"title", "category", "description", "price", "step", "end_date", "image"}

	errs, err := forms.Validate(values, validators, required)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !errs.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, "add-lot", "Добавление лота", map[string]any{
			"categories": categories,
			"values":     values,
			"errors":     errs,
		})
		return
	}

	imageURL, err := h.saveUpload(file, header.Filename)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	startPrice, _ := strconv.ParseFloat(values["price"], 64)
	bidStep, _ := strconv.ParseInt(values["step"], 10, 64)
	categoryID, _ := strconv.ParseInt(values["category"], 10, 64)
	endAt, _ := time.Parse(format.DateLayout, values["end_date"])

	lot := &domain.Lot{
		Title:       values["title"],
		Description: values["description"],
		ImageURL:    imageURL,
		StartPrice:  startPrice,
		BidStep:     bidStep,
		CategoryID:  categoryID,
		SellerID:    user.ID,
		EndAt:       endAt,
	}
	if err := h.store.CreateLot(r.Context(), lot); err != nil {
		h.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/lots/"+strconv.FormatInt(lot.ID, 10), http.StatusSeeOther)
}

// saveUpload writes the lot image under the uploads directory with a
// generated name, keeping only the original extension.
func (h *Handler) saveUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

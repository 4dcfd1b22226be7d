package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/polarbid/polarbid/internal/core/domain"
	"github.com/polarbid/polarbid/internal/shell/store"
)

// =============================================================================
// Browse Pages
// =============================================================================

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	lots, err := h.store.ListOpenLots(r.Context(), h.now(), store.DefaultListOptions())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "index", "Главная", map[string]any{
		"lots": lots,
	})
}

func (h *Handler) handleCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.handleNotFound(w, r)
		return
	}

	category, err := h.store.GetCategory(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.handleNotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	lots, err := h.store.ListLotsByCategory(r.Context(), id, h.now(), store.DefaultListOptions())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "category", category.Name, map[string]any{
		"category": category,
		"lots":     lots,
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var lots []domain.Lot
	if query != "" {
		var err error
		lots, err = h.store.SearchLots(r.Context(), query, store.DefaultListOptions())
		if err != nil {
			h.serverError(w, r, err)
			return
		}
	}

	h.render(w, r, http.StatusOK, "search", "Поиск", map[string]any{
		"query": query,
		"lots":  lots,
	})
}

// =============================================================================
// My Bids
// =============================================================================

// myBidView is the per-row view model for the my-bids page; Won and
// Ended are precomputed so the template stays declarative.
type myBidView struct {
	LotID       int64
	LotTitle    string
	LotImageURL string
	LotEndAt    time.Time
	Amount      float64
	CreatedAt   time.Time
	Won         bool
	Ended       bool
	Contacts    string
}

func (h *Handler) handleMyBids(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	bids, err := h.store.ListBidsByUser(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	now := h.now()
	views := make([]myBidView, 0, len(bids))
	for _, b := range bids {
		views = append(views, myBidView{
			LotID:       b.LotID,
			LotTitle:    b.LotTitle,
			LotImageURL: b.LotImageURL,
			LotEndAt:    b.LotEndAt,
			Amount:      b.Amount,
			CreatedAt:   b.CreatedAt,
			Won:         b.Won(),
			Ended:       b.LotEnded(now),
			Contacts:    b.Contacts,
		})
	}

	h.render(w, r, http.StatusOK, "my-bids", "Мои ставки", map[string]any{
		"bids": views,
	})
}

package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/anigawade45/grocery-market/internal/review"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewsHandler struct {
	Svc *review.Service
	Log *zap.Logger
}

type createReviewReq struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type updateReviewReq struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
	Reply   *string `json:"reply,omitempty"` // supplier only
}

func (h *ReviewsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireIdentity)
		r.Post("/reviews", h.create)
		r.Patch("/reviews/{id}", h.update)
		r.Delete("/reviews/{id}", h.delete)
	})
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	var req createReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rv, err := h.Svc.Create(ctx, id.UserID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ReviewsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	var req updateReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	reviewID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if req.Reply != nil {
		if id.Role != market.RoleSupplier {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the supplier replies to reviews"})
			return
		}
		rv, err := h.Svc.Reply(ctx, id.UserID, reviewID, *req.Reply)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rv)
		return
	}

	if id.Role != market.RoleBuyer {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the author edits a review"})
		return
	}
	rv, err := h.Svc.Update(ctx, id.UserID, reviewID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *ReviewsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Delete(ctx, id.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

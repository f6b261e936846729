package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/anigawade45/grocery-market/internal/cart"
	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	Svc *cart.Service
	Log *zap.Logger
}

type cartItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireIdentity)
		r.Post("/cart", h.addItem)
		r.Get("/cart", h.view)
		r.Delete("/cart", h.clear)
		r.Patch("/cart/{productID}", h.updateItem)
		r.Delete("/cart/{productID}", h.removeItem)
	})
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Svc.Add(ctx, id.UserID, req.ProductID, req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) view(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Svc.View(ctx, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Clear(ctx, id.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	var req struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Svc.Update(ctx, id.UserID, chi.URLParam(r, "productID"), req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Svc.Remove(ctx, id.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

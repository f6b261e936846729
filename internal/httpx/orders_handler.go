package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/anigawade45/grocery-market/internal/market"
	"github.com/anigawade45/grocery-market/internal/order"
	"github.com/anigawade45/grocery-market/internal/redisx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StatusCache is the hot-path order status cache. Entries carry the owner
// ids so cache hits enforce the same visibility as the DB path.
type StatusCache interface {
	Get(ctx context.Context, orderID string) (redisx.OrderStatus, bool)
	Set(ctx context.Context, orderID string, st redisx.OrderStatus)
}

type OrdersHandler struct {
	Svc   *order.Service
	Cache StatusCache
	Log   *zap.Logger
}

type placeOrderReq struct {
	DeliveryDate string `json:"delivery_date"` // YYYY-MM-DD
}

type modifyOrderReq struct {
	Status     string            `json:"status,omitempty"`
	Items      []market.CartItem `json:"items,omitempty"`
	TotalCents *int              `json:"total_cents,omitempty"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireIdentity)
		r.Post("/orders", h.place)
		r.Get("/orders/{id}", h.get)
		r.Get("/orders/{id}/status", h.getStatus)
		r.Patch("/orders/{id}", h.modify)
		r.Delete("/orders/{id}", h.cancel)
	})
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	id, ok := requireRole(w, r, market.RoleBuyer)
	if !ok {
		return
	}
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	var deliveryDate time.Time
	if req.DeliveryDate != "" {
		d, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delivery_date must be YYYY-MM-DD"})
			return
		}
		deliveryDate = d
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Place(ctx, id.UserID, deliveryDate)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Svc.Get(ctx, id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

// getStatus is the hot read path: cached status first, full fetch on miss.
// The cached entry carries the owner ids, so a hit is served only to the
// order's buyer or supplier, same as the DB path.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Cache != nil {
		if st, hit := h.Cache.Get(ctx, orderID); hit {
			if id.UserID != st.BuyerID && id.UserID != st.SupplierID {
				writeError(w, market.Ownershipf("order %s does not belong to caller", orderID))
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": st.Status})
			return
		}
	}

	o, err := h.Svc.Get(ctx, id.UserID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, map[string]any{"status": o.Status})
}

func (h *OrdersHandler) modify(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	var req modifyOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// suppliers move the fulfillment status, buyers reshape the item list
	if req.Status != "" {
		if id.Role != market.RoleSupplier {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the supplier updates fulfillment status"})
			return
		}
		o, err := h.Svc.UpdateStatus(ctx, id.UserID, orderID, market.Status(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		h.cacheStatus(ctx, o)
		writeJSON(w, http.StatusOK, o)
		return
	}

	if id.Role != market.RoleBuyer {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the buyer modifies items"})
		return
	}
	o, err := h.Svc.ModifyItems(ctx, id.UserID, orderID, req.Items, req.TotalCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Cancel(ctx, id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o market.Order) {
	if h.Cache == nil {
		return
	}
	h.Cache.Set(ctx, o.ID, redisx.OrderStatus{
		Status:     string(o.Status),
		BuyerID:    o.BuyerID,
		SupplierID: o.SupplierID,
	})
}

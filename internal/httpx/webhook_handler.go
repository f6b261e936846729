package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/anigawade45/grocery-market/internal/payment"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	Engine *payment.Engine
	Secret string
	Log    *zap.Logger
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/webhooks/payment", h.paymentWebhook)
}

// paymentWebhook verifies the raw-body signature before trusting anything in
// the payload. Verification or validation failure returns 400 with no state
// change; the gateway's retry is safe because reconciliation is idempotent on
// the transaction id.
func (h *WebhookHandler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	if err := payment.VerifySignature(h.Secret, body, r.Header.Get(payment.SignatureHeader)); err != nil {
		h.Log.Warn("webhook signature rejected",
			zap.String("remote", r.RemoteAddr), zap.Error(err))
		writeError(w, err)
		return
	}

	ev, err := payment.ParseEvent(body)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.Reconcile(ctx, ev)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.OrderID == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"acknowledged": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":  res.OrderID,
		"duplicate": res.Duplicate,
	})
}

package httpx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/anigawade45/grocery-market/internal/market"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation -> 400", market.Validationf("qty"), http.StatusBadRequest},
		{"invariant -> 400", market.Invariantf("mixed suppliers"), http.StatusBadRequest},
		{"verification -> 400", market.ErrVerification, http.StatusBadRequest},
		{"not found -> 404", market.NotFoundf("order x"), http.StatusNotFound},
		{"ownership -> 403", market.Ownershipf("not yours"), http.StatusForbidden},
		{"unknown -> 500", errors.New("connection reset"), http.StatusInternalServerError},
		{"store -> 500", market.ErrStore, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusFromError(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

package httpadapter

import (
	"context"
	"net/http"

	"fundraiser/internal/core/domain"
)

// AccountHeader carries the address of the caller.
const AccountHeader = "X-Account"

type callerKey struct{}

// requireAccount rejects requests without a valid X-Account header and
// stores the parsed address in the request context.
func (h *Handler) requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr, err := domain.ParseAddress(r.Header.Get(AccountHeader))
		if err != nil {
			writeErrorMessage(w, http.StatusUnauthorized, "missing or invalid "+AccountHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, addr)))
	})
}

func callerFrom(ctx context.Context) domain.Address {
	addr, _ := ctx.Value(callerKey{}).(domain.Address)
	return addr
}

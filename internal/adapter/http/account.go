package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundraiser/internal/core/domain"
)

type accountSettingsRequest struct {
	AcceptsFunds *bool `json:"accepts_funds"`
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid address")
		return
	}
	h.writeAccount(w, r, addr)
}

// handleAccountSettings lets an account refuse or accept payouts. Only the
// account itself may change its settings.
func (h *Handler) handleAccountSettings(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid address")
		return
	}
	caller := callerFrom(r.Context())
	if caller != addr {
		writeErrorMessage(w, http.StatusForbidden, "cannot change settings of another account")
		return
	}
	var req accountSettingsRequest
	if err = decodeJSON(r, &req); err != nil || req.AcceptsFunds == nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err = h.svc.SetAcceptsFunds(r.Context(), caller, *req.AcceptsFunds); err != nil {
		h.writeError(w, r, "account settings", err)
		return
	}
	h.writeAccount(w, r, addr)
}

func (h *Handler) handleEscrow(w http.ResponseWriter, r *http.Request) {
	bal, err := h.svc.EscrowBalance(r.Context())
	if err != nil {
		h.writeError(w, r, "escrow balance", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":         bal,
		"balance_display": h.denom.Format(bal),
	})
}

func (h *Handler) writeAccount(w http.ResponseWriter, r *http.Request, addr domain.Address) {
	acc, err := h.svc.Account(r.Context(), addr)
	if err != nil {
		h.writeError(w, r, "get account", err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		Address:        acc.Address.String(),
		Balance:        acc.Balance,
		BalanceDisplay: h.denom.Format(acc.Balance),
		Certificates:   acc.Certificates,
		AcceptsFunds:   acc.AcceptsFunds,
	})
}

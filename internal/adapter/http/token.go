package httpadapter

import (
	"net/http"

	"fundraiser/internal/core/domain"
)

type transferRequest struct {
	To string `json:"to"`
}

func (h *Handler) handleCollection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":   domain.CollectionName,
		"symbol": domain.CollectionSymbol,
	})
}

// handleGetCertificate returns owner and URI of a certificate, 404 when the
// id was never minted.
func (h *Handler) handleGetCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid token id")
		return
	}
	cert, err := h.svc.Certificate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get certificate", err)
		return
	}
	writeJSON(w, http.StatusOK, certificateResponse{ID: cert.ID, Owner: cert.Owner.String(), URI: cert.URI})
}

// handleTransferCertificate hands the certificate, and control of the
// campaign, to another account.
func (h *Handler) handleTransferCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid token id")
		return
	}
	var req transferRequest
	if err = decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid recipient address")
		return
	}
	if err = h.svc.TransferCertificate(r.Context(), callerFrom(r.Context()), to, id); err != nil {
		h.writeError(w, r, "transfer certificate", err)
		return
	}
	cert, err := h.svc.Certificate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get certificate", err)
		return
	}
	writeJSON(w, http.StatusOK, certificateResponse{ID: cert.ID, Owner: cert.Owner.String(), URI: cert.URI})
}

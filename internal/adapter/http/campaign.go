package httpadapter

import (
	"net/http"
)

type startCampaignRequest struct {
	URI         string `json:"uri"`
	RequiredAmt string `json:"required_amt"`
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type donateRequest struct {
	Value string `json:"value"`
}

// handleStartCampaign opens a campaign owned by the caller. The target is a
// decimal string in display units. It responds 201 with the new id.
func (h *Handler) handleStartCampaign(w http.ResponseWriter, r *http.Request) {
	var req startCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	required, err := h.denom.Parse(req.RequiredAmt)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid required_amt")
		return
	}
	id, err := h.svc.StartCampaign(r.Context(), callerFrom(r.Context()), req.URI, required)
	if err != nil {
		h.writeError(w, r, "start campaign", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) handleExtendCampaign(w http.ResponseWriter, r *http.Request) {
	id, amount, ok := h.parseAmountRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.ExtendCampaign(r.Context(), callerFrom(r.Context()), id, amount); err != nil {
		h.writeError(w, r, "extend campaign", err)
		return
	}
	h.writeCampaign(w, r, id)
}

// handleDonate records a donation. The attached value arrives as "value"
// rather than a separate transfer.
func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	var req donateRequest
	if err = decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	value, err := h.denom.Parse(req.Value)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid value")
		return
	}
	if err = h.svc.Donate(r.Context(), callerFrom(r.Context()), id, value); err != nil {
		h.writeError(w, r, "donate", err)
		return
	}
	h.writeCampaign(w, r, id)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, amount, ok := h.parseAmountRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.Withdraw(r.Context(), callerFrom(r.Context()), id, amount); err != nil {
		h.writeError(w, r, "withdraw", err)
		return
	}
	h.writeCampaign(w, r, id)
}

func (h *Handler) handleEndCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	if err = h.svc.EndCampaign(r.Context(), callerFrom(r.Context()), id); err != nil {
		h.writeError(w, r, "end campaign", err)
		return
	}
	h.writeCampaign(w, r, id)
}

// handleGetCampaign returns the campaign record. Unknown ids are not an
// error: the zero record comes back with exists=false.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	h.writeCampaign(w, r, id)
}

func (h *Handler) handleLastTokenID(w http.ResponseWriter, r *http.Request) {
	last, err := h.svc.GetLastTokenID(r.Context())
	if err != nil {
		h.writeError(w, r, "last token id", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"last_token_id": last})
}

func (h *Handler) writeCampaign(w http.ResponseWriter, r *http.Request, id uint64) {
	view, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get campaign", err)
		return
	}
	writeJSON(w, http.StatusOK, newCampaignResponse(view, h.denom))
}

func (h *Handler) parseAmountRequest(w http.ResponseWriter, r *http.Request) (uint64, uint64, bool) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid campaign id")
		return 0, 0, false
	}
	var req amountRequest
	if err = decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON")
		return 0, 0, false
	}
	amount, err := h.denom.Parse(req.Amount)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid amount")
		return 0, 0, false
	}
	return id, amount, true
}

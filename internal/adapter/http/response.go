package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
)

type errorResponse struct {
	Error string `json:"error"`
}

// campaignResponse mirrors a campaign record. Amounts are given both in
// smallest units and as display strings.
type campaignResponse struct {
	ID              uint64 `json:"id"`
	Exists          bool   `json:"exists"`
	Owner           string `json:"owner,omitempty"`
	URI             string `json:"uri"`
	RequiredAmt     uint64 `json:"required_amt"`
	CurrAmt         uint64 `json:"curr_amt"`
	RequiredDisplay string `json:"required_display"`
	CurrDisplay     string `json:"curr_display"`
	Completed       bool   `json:"completed"`
}

type certificateResponse struct {
	ID    uint64 `json:"id"`
	Owner string `json:"owner"`
	URI   string `json:"uri"`
}

type accountResponse struct {
	Address        string `json:"address"`
	Balance        uint64 `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
	Certificates   uint64 `json:"certificates"`
	AcceptsFunds   bool   `json:"accepts_funds"`
}

type eventResponse struct {
	Seq           int64     `json:"seq"`
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	CampaignID    uint64    `json:"campaign_id"`
	Actor         string    `json:"actor"`
	Recipient     string    `json:"recipient,omitempty"`
	Amount        uint64    `json:"amount"`
	AmountDisplay string    `json:"amount_display"`
	CreatedAt     time.Time `json:"created_at"`
}

func newCampaignResponse(v *port.CampaignView, denom domain.Denomination) campaignResponse {
	return campaignResponse{
		ID:              v.ID,
		Exists:          v.Exists,
		Owner:           v.Owner.String(),
		URI:             v.URI,
		RequiredAmt:     v.RequiredAmt,
		CurrAmt:         v.CurrAmt,
		RequiredDisplay: denom.Format(v.RequiredAmt),
		CurrDisplay:     denom.Format(v.CurrAmt),
		Completed:       v.Completed,
	}
}

func newEventResponse(e domain.Event, denom domain.Denomination) eventResponse {
	return eventResponse{
		Seq:           e.Seq,
		ID:            e.ID,
		Kind:          string(e.Kind),
		CampaignID:    e.CampaignID,
		Actor:         e.Actor.String(),
		Recipient:     e.Recipient.String(),
		Amount:        e.Amount,
		AmountDisplay: denom.Format(e.Amount),
		CreatedAt:     e.CreatedAt,
	}
}

// statusFor maps ledger errors onto HTTP status codes. Unknown errors are
// internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrNotTokenOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrCompleted), errors.Is(err, domain.ErrTransferRejected):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDonatedZero), errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOverPayment), errors.Is(err, domain.ErrNotEnoughBalance),
		errors.Is(err, domain.ErrAmountOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Internal errors are logged and
// replaced by a generic message to avoid leaking details.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" error",
			slog.Any("error", err),
			slog.String("path", r.URL.Path))
		writeErrorMessage(w, status, "internal error")
		return
	}
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// idParam parses the {id} path parameter.
func idParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

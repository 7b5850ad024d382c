package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxEventPage = 1000
	pingPeriod   = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleListEvents pages through committed notifications. `after` is an
// exclusive sequence number (default 0) and `limit` caps the page size.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		after int64
		limit = 100
		err   error
	)
	if s := q.Get("after"); s != "" {
		if after, err = strconv.ParseInt(s, 10, 64); err != nil || after < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "invalid 'after'")
			return
		}
	}
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit <= 0 {
			writeErrorMessage(w, http.StatusBadRequest, "invalid 'limit'")
			return
		}
	}
	if limit > maxEventPage {
		limit = maxEventPage
	}
	events, err := h.svc.Events(r.Context(), after, limit)
	if err != nil {
		h.writeError(w, r, "list events", err)
		return
	}
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e, h.denom))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEventStream upgrades to a websocket and pushes every notification
// the relay publishes after the client connected. Clients catch up on older
// events through handleListEvents.
func (h *Handler) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := h.hub.subscribe()
	defer h.hub.unsubscribe(sub)

	// the read loop only detects the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"))
				return
			}
			if err = conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

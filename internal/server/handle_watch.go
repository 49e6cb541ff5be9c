package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
)

// handleWatch streams match snapshots over a websocket: the current state on
// connect, then a fresh snapshot whenever the match changes.
func handleWatch(logger *slog.Logger, reg *Registry, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "matchID")

		lm, err := reg.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()

		writeState := func() error {
			data, err := json.Marshal(lm.state())
			if err != nil {
				return err
			}
			return conn.Write(ctx, websocket.MessageText, data)
		}

		if err := writeState(); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		ch := broker.Subscribe(id)
		defer broker.Unsubscribe(id, ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if err := writeState(); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// handleEventsWS delivers the same events as handleEvents over a WebSocket.
// Messages from the client are ignored.
func handleEventsWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := snapshotFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := broker.Subscribe(snap.TeamID)
		defer broker.Unsubscribe(snap.TeamID, ch)

		// Outlives the 30 minute hunt.
		ctx, cancel := context.WithTimeout(r.Context(), 40*time.Minute)
		defer cancel()
		ctx = conn.CloseRead(ctx)

		if err := conn.Write(ctx, websocket.MessageText, stateEvent(snap)); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

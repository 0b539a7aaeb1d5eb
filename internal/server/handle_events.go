package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/playperu/codexhunt/internal/hunt"
)

func stateEvent(snap hunt.Snapshot) []byte {
	data, _ := json.Marshal(Event{
		Type:   EventState,
		Stage:  snap.Stage,
		Phase:  snap.Phase,
		Health: snap.Health,
	})
	return data
}

// handleEvents streams the team's events as Server-Sent Events, starting with
// its current state.
func handleEvents(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := snapshotFrom(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, hunt.KindInternal, "streaming not supported")
			return
		}

		ch := broker.Subscribe(snap.TeamID)
		defer broker.Unsubscribe(snap.TeamID, ch)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventState, stateEvent(snap))
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: update\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

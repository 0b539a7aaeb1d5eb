package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/playperu/codexhunt/internal/game"
	"github.com/playperu/codexhunt/internal/hunt"
)

type RefuelRequest struct {
	Coupon string `json:"coupon" required:"true"`
}

type RefuelResponse struct {
	Message string  `json:"message"`
	Health  float64 `json:"health"`
}

func handleRefuel(logger *slog.Logger, svc *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefuelRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, hunt.KindValidation, "invalid request body")
			return
		}
		req.Coupon = strings.TrimSpace(req.Coupon)
		if req.Coupon == "" {
			writeError(w, http.StatusBadRequest, hunt.KindValidation, "coupon is required")
			return
		}

		snap := snapshotFrom(r)
		health, err := svc.Refuel(r.Context(), snap, req.Coupon)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		broker.Publish(snap.TeamID, Event{
			Type:   EventRefuel,
			Stage:  snap.Stage,
			Phase:  snap.Phase,
			Health: health,
		})
		writeJSON(w, http.StatusOK, RefuelResponse{Message: "health restored", Health: health})
	}
}

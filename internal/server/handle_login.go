package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/codexhunt/internal/game"
	"github.com/playperu/codexhunt/internal/hunt"
)

type LoginRequest struct {
	OTP *int `json:"otp" required:"true" minimum:"0" maximum:"999999"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func handleLogin(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, hunt.KindValidation, "invalid request body")
			return
		}
		if req.OTP == nil || *req.OTP < 0 || *req.OTP >= hunt.MaxCodeValue {
			writeError(w, http.StatusBadRequest, hunt.KindValidation, "otp must be a number below 1000000")
			return
		}

		token, err := svc.Login(r.Context(), *req.OTP)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{Token: token})
	}
}

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/playperu/codexhunt/internal/game"
	"github.com/playperu/codexhunt/internal/hunt"
)

type RegisterRequest struct {
	Name         string  `json:"name" required:"true" maxLength:"25"`
	PhoneNumbers []int64 `json:"phoneNumbers" required:"true" minItems:"2" maxItems:"6"`
	SecretKey    string  `json:"secretKey" required:"true"`
}

func (req *RegisterRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(req.Name) > hunt.MaxTeamName {
		return errors.New("name must be at most 25 characters")
	}
	if n := len(req.PhoneNumbers); n < hunt.MinMembers || n > hunt.MaxMembers {
		return errors.New("a team needs 2 to 6 phone numbers")
	}
	for i, p := range req.PhoneNumbers {
		if p <= 0 || p >= hunt.MaxPhoneValue {
			return errors.New("invalid phone number")
		}
		if slices.Contains(req.PhoneNumbers[:i], p) {
			return errors.New("duplicate phone number")
		}
	}
	return nil
}

func handleRegister(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, hunt.KindValidation, "invalid request body")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, hunt.KindValidation, err.Error())
			return
		}

		_, err := svc.Register(r.Context(), game.Registration{
			Name:      req.Name,
			Phones:    req.PhoneNumbers,
			SecretKey: req.SecretKey,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "registered"})
	}
}

package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/codexhunt/internal/game"
	"github.com/playperu/codexhunt/internal/hunt"
)

type AnswerRequest struct {
	Answer *string `json:"answer" required:"true"`
}

// AnswerResponse is sent with 200 for a correct answer and 400 for a wrong one.
type AnswerResponse struct {
	Message   string  `json:"message"`
	Correct   bool    `json:"correct"`
	Stage     int     `json:"stage"`
	Phase     int     `json:"phase"`
	Health    float64 `json:"health"`
	Completed bool    `json:"completed"`
}

func handleAnswer(logger *slog.Logger, svc *game.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil || req.Answer == nil {
			writeError(w, http.StatusBadRequest, hunt.KindValidation, "answer is required")
			return
		}

		snap := snapshotFrom(r)
		out, err := svc.Answer(r.Context(), snap, *req.Answer)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		broker.Publish(snap.TeamID, Event{
			Type:      EventAnswer,
			Stage:     out.Stage,
			Phase:     out.Phase,
			Health:    out.Health,
			Completed: out.Completed,
		})

		resp := AnswerResponse{
			Message:   "correct answer",
			Correct:   out.Correct,
			Stage:     out.Stage,
			Phase:     out.Phase,
			Health:    out.Health,
			Completed: out.Completed,
		}
		if !out.Correct {
			resp.Message = "wrong answer"
			writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

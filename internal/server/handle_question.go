package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/codexhunt/internal/game"
)

// QuestionResponse is the current question (without its answer) and the
// team's state after session validation.
type QuestionResponse struct {
	Prompt    string     `json:"prompt"`
	Hint      string     `json:"hint,omitempty"`
	Image     string     `json:"image,omitempty"`
	Story     int        `json:"story"`
	Stage     int        `json:"stage"`
	Phase     int        `json:"phase"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Health    float64    `json:"health"`
}

func handleGetQuestion(logger *slog.Logger, svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := snapshotFrom(r)

		q, err := svc.Question(snap)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, QuestionResponse{
			Prompt:    q.Prompt,
			Hint:      q.Hint,
			Image:     q.Image,
			Story:     snap.Story,
			Stage:     snap.Stage,
			Phase:     snap.Phase,
			StartTime: snap.StartTime,
			EndTime:   snap.EndTime,
			Health:    snap.Health,
		})
	}
}

package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "CodeX Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the CodeX scavenger hunt.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]struct {
		Status string `json:"status"`
	}{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHealthz)

	// POST /register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/register")
	postRegister.SetSummary("Register a team")
	postRegister.SetDescription("Creates a team on a story none of its members has played and texts the team code to the first phone number.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(MessageResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(postRegister)

	// POST /login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/login")
	postLogin.SetSummary("Log in")
	postLogin.SetDescription("Exchanges a team code for a bearer token. The first login starts the hunt clock.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(LoginResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	_ = r.AddOperation(postLogin)

	// GET /question
	getQuestion, _ := r.NewOperationContext(http.MethodGet, "/question")
	getQuestion.SetSummary("Current question")
	getQuestion.SetDescription("Returns the team's current question and state. Requires Bearer token.")
	getQuestion.AddRespStructure(QuestionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	addSessionErrors(getQuestion)
	_ = r.AddOperation(getQuestion)

	// POST /question
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/question")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Answers the current question. A wrong answer costs 5 health. Requires Bearer token.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(AnswerResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	addSessionErrors(postAnswer)
	_ = r.AddOperation(postAnswer)

	// POST /refuel
	postRefuel, _ := r.NewOperationContext(http.MethodPost, "/refuel")
	postRefuel.SetSummary("Redeem coupon")
	postRefuel.SetDescription("Restores 40 health, once per team. Requires Bearer token.")
	postRefuel.AddReqStructure(RefuelRequest{})
	postRefuel.AddRespStructure(RefuelResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	addSessionErrors(postRefuel)
	_ = r.AddOperation(postRefuel)

	// GET /events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of team updates. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	addSessionErrors(getEvents)
	_ = r.AddOperation(getEvents)

	// GET /events/ws
	getEventsWS, _ := r.NewOperationContext(http.MethodGet, "/events/ws")
	getEventsWS.SetSummary("WebSocket event stream")
	getEventsWS.SetDescription("Upgrades to a WebSocket carrying the same updates as /events. Pass token as query parameter.")
	getEventsWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	addSessionErrors(getEventsWS)
	_ = r.AddOperation(getEventsWS)

	return r.Spec
}

// addSessionErrors documents the responses of the session gate.
func addSessionErrors(op openapi.OperationContext) {
	op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTeapot))
	op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

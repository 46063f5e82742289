package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"trivia-quiz/internal/quiz"
)

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		LiveSessions: a.sessions.Live(),
	})
}

func (a *API) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, controller, err := a.sessions.Create(r.Context())
	if err != nil {
		a.logger.Error("failed to create session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create session"})
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(id, controller.State()))
}

func (a *API) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id := sessionIDParam(r)
	controller, err := a.sessions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(id, controller.State()))
}

func (a *API) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Delete(r.Context(), sessionIDParam(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var request answerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if request.Option == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "option is required"})
		return
	}

	a.applyAction(w, r, func(controller *quiz.Controller) (quiz.State, error) {
		return controller.Answer(request.QuestionID, *request.Option)
	})
}

func (a *API) HandleReset(w http.ResponseWriter, r *http.Request) {
	a.applyAction(w, r, (*quiz.Controller).Reset)
}

func (a *API) HandleRetry(w http.ResponseWriter, r *http.Request) {
	a.applyAction(w, r, (*quiz.Controller).Retry)
}

func (a *API) applyAction(w http.ResponseWriter, r *http.Request, action func(*quiz.Controller) (quiz.State, error)) {
	id := sessionIDParam(r)
	controller, err := a.sessions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	state, err := action(controller)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(id, state))
}

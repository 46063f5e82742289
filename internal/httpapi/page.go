package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/session"
	"trivia-quiz/internal/view"
)

const sessionCookie = "quiz_session"

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Trivia Quiz</title>
{{- if eq .Kind "loading"}}
<meta http-equiv="refresh" content="1">
{{- end}}
</head>
<body>
<main>
<h1>Trivia Quiz</h1>
{{- if eq .Kind "loading"}}
<p class="loading">{{.Message}}</p>
{{- else if eq .Kind "load_failed"}}
<p class="error">{{.Message}}</p>
<form method="post" action="/retry"><button type="submit">{{.ActionLabel}}</button></form>
{{- else if eq .Kind "empty"}}
<p>{{.Message}}</p>
{{- else if eq .Kind "results"}}
<h2>{{.Message}}</h2>
<form method="post" action="/reset"><button type="submit">{{.ActionLabel}}</button></form>
{{- else}}
<p class="progress">{{.Progress}}</p>
<h2>{{.Prompt}}</h2>
{{- $questionID := .QuestionID}}
{{- range .Options}}
<form method="post" action="/answer">
<input type="hidden" name="question_id" value="{{$questionID}}">
<input type="hidden" name="option" value="{{.Index}}">
<button type="submit">{{.Letter}}. {{.Text}}</button>
</form>
{{- end}}
<p class="score">Score: {{.Score}}</p>
{{- end}}
</main>
</body>
</html>
`

// HandlePage renders the quiz view bound to the visitor's session cookie,
// creating a session on the first visit.
func (a *API) HandlePage(w http.ResponseWriter, r *http.Request) {
	controller, err := a.pageSession(w, r)
	if err != nil {
		a.logger.Error("failed to open page session", zap.Error(err))
		http.Error(w, "failed to start quiz", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := a.page.Execute(w, view.Build(controller.State())); err != nil {
		a.logger.Error("failed to render page", zap.Error(err))
	}
}

func (a *API) HandlePageAnswer(w http.ResponseWriter, r *http.Request) {
	option, err := strconv.Atoi(r.FormValue("option"))
	if err != nil {
		http.Error(w, "option must be an integer", http.StatusBadRequest)
		return
	}
	questionID := r.FormValue("question_id")

	a.pageAction(w, r, func(controller *quiz.Controller) (quiz.State, error) {
		return controller.Answer(questionID, option)
	})
}

func (a *API) HandlePageReset(w http.ResponseWriter, r *http.Request) {
	a.pageAction(w, r, (*quiz.Controller).Reset)
}

func (a *API) HandlePageRetry(w http.ResponseWriter, r *http.Request) {
	a.pageAction(w, r, (*quiz.Controller).Retry)
}

// pageAction applies a form action and redirects back to the page. A
// double-submitted or stale form is not an error for the visitor; the page
// simply shows the current state.
func (a *API) pageAction(w http.ResponseWriter, r *http.Request, action func(*quiz.Controller) (quiz.State, error)) {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil {
		controller, getErr := a.sessions.Get(r.Context(), cookie.Value)
		switch {
		case getErr == nil:
			if _, err := action(controller); err != nil {
				a.logger.Debug("ignored page action",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
			}
		case !errors.Is(getErr, session.ErrSessionNotFound):
			a.logger.Error("failed to load page session", zap.Error(getErr))
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *API) pageSession(w http.ResponseWriter, r *http.Request) (*quiz.Controller, error) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		controller, err := a.sessions.Get(r.Context(), cookie.Value)
		if err == nil {
			return controller, nil
		}
		if !errors.Is(err, session.ErrSessionNotFound) {
			return nil, err
		}
	}

	id, controller, err := a.sessions.Create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return controller, nil
}

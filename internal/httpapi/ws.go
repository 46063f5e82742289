package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// HandleWS streams state snapshots for one session and accepts answer,
// reset and retry messages.
func (a *API) HandleWS(w http.ResponseWriter, r *http.Request) {
	id := sessionIDParam(r)
	controller, err := a.sessions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("ws upgrade failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := controller.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				a.logger.Debug("ws write error", zap.String("session_id", id), zap.Error(err))
				return
			}
		}
	}()

	enqueue := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					// Session ended; unblock the read loop.
					_ = conn.Close()
					return
				}
				select {
				case send <- outboundMessage{Type: "state", Payload: toSessionResponse(id, state)}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var actionErr error
		switch inbound.Type {
		case "answer":
			var payload answerRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			_, actionErr = controller.Answer(payload.QuestionID, *payload.Option)
		case "reset":
			_, actionErr = controller.Reset()
		case "retry":
			_, actionErr = controller.Retry()
		default:
			enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
			continue
		}
		if actionErr != nil {
			enqueue(outboundMessage{Type: "error", Payload: errorPayload{Message: actionErr.Error()}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

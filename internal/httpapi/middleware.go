package httpapi

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxLoggedBodyBytes = 512

// statusRecorder captures the status code and the head of the response
// body so failed requests can be logged with their error payload.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	logBody      bytes.Buffer
	maxLogBytes  int
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if remaining := r.maxLogBytes - r.logBody.Len(); remaining > 0 {
		if len(payload) > remaining {
			r.logBody.Write(payload[:remaining])
			r.truncated = true
		} else {
			r.logBody.Write(payload)
		}
	} else if len(payload) > 0 {
		r.truncated = true
	}

	written, err := r.ResponseWriter.Write(payload)
	r.bytesWritten += written
	return written, err
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLoggedBodyBytes,
		}

		next.ServeHTTP(recorder, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.statusCode),
			zap.Int("bytes", recorder.bytesWritten),
			zap.Duration("duration", time.Since(started)),
		}
		if recorder.statusCode >= http.StatusBadRequest {
			fields = append(fields,
				zap.String("response", recorder.logBody.String()),
				zap.Bool("truncated", recorder.truncated),
			)
			logger.Warn("request failed", fields...)
			return
		}
		logger.Debug("request served", fields...)
	})
}

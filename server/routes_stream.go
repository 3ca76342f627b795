// routes_stream.go - NDJSON-Ausgabe fuer Streaming-Handler
// Enthaelt: streamResponse(), errorResponse()

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/toolfence/api"
)

// errorResponse macht aus einem Fehler die gin.H-Form, die streamResponse
// und collectChatResponse verstehen. Upstream-Status wird durchgereicht.
func errorResponse(err error) gin.H {
	var se api.StatusError
	if errors.As(err, &se) {
		msg := se.ErrorMessage
		if msg == "" {
			msg = se.Error()
		}
		return gin.H{"error": msg, "status": se.StatusCode}
	}
	return gin.H{"error": err.Error()}
}

// streamResponse schreibt jeden Wert aus ch als eine NDJSON-Zeile. Ein
// Fehler vor der ersten Zeile wird zur normalen JSON-Fehlerantwort.
func streamResponse(c *gin.Context, ch chan any) {
	c.Header("Content-Type", "application/x-ndjson")
	c.Stream(func(w io.Writer) bool {
		val, ok := <-ch
		if !ok {
			return false
		}

		if h, ok := val.(gin.H); ok {
			if e, ok := h["error"].(string); ok {
				status, ok := h["status"].(int)
				if !ok {
					status = http.StatusInternalServerError
				}

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.JSON(status, gin.H{"error": e})
				} else {
					if err := json.NewEncoder(c.Writer).Encode(gin.H{"error": e}); err != nil {
						slog.Error("streamResponse failed to encode json error", "error", err)
					}
				}

				return false
			}
		}

		bts, err := json.Marshal(val)
		if err != nil {
			slog.Info(fmt.Sprintf("streamResponse: json.Marshal failed with %s", err))
			return false
		}

		bts = append(bts, '\n')
		if _, err := w.Write(bts); err != nil {
			slog.Info(fmt.Sprintf("streamResponse: w.Write failed with %s", err))
			return false
		}

		return true
	})
}

// compat.go - Gemeinsamer Unterbau der Kompatibilitaets-Endpunkte
// Enthaelt: BaseWriter, chatLine, rewriteBody, writeJSON, writeSSE
//
// Die Middlewares wandeln einen fremden Request in einen api.ChatRequest,
// ersetzen damit den Body und haengen einen Writer vor den Chat-Handler.
// Der Writer bekommt jede NDJSON-Zeile (bzw. den einen JSON-Body) einzeln
// und schreibt sie im Format der jeweiligen API.
package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/7blacky7/toolfence/api"
)

// BaseWriter umhuellt den gin-Writer des eigentlichen Handlers
type BaseWriter struct {
	gin.ResponseWriter
}

// chatLine ist eine Zeile des Chat-Handlers. Fehler mitten im Stream
// kommen als {"error": "..."} statt als ChatResponse.
type chatLine struct {
	api.ChatResponse
	Error string `json:"error,omitempty"`
}

func decodeLine(data []byte) (chatLine, error) {
	var l chatLine
	err := json.Unmarshal(data, &l)
	return l, err
}

// rewriteBody ersetzt den Request-Body durch den nativen Chat-Request
func rewriteBody(c *gin.Context, req api.ChatRequest) error {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(req); err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(&b)
	c.Request.ContentLength = int64(b.Len())
	return nil
}

func (w *BaseWriter) writeJSON(v any) error {
	w.ResponseWriter.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w.ResponseWriter).Encode(v)
}

// writeSSE schreibt ein Server-Sent-Event, ohne event-Zeile wenn event leer ist
func (w *BaseWriter) writeSSE(event string, v any) error {
	d, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.ResponseWriter.Header().Set("Content-Type", "text/event-stream")
	if event != "" {
		_, err = fmt.Fprintf(w.ResponseWriter, "event: %s\ndata: %s\n\n", event, d)
	} else {
		_, err = fmt.Fprintf(w.ResponseWriter, "data: %s\n\n", d)
	}
	return err
}

// statusError liest den Fehler-Body des Chat-Handlers
func statusError(data []byte) (api.StatusError, error) {
	var serr api.StatusError
	err := json.Unmarshal(data, &serr)
	return serr, err
}

func completionID() string {
	return "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

// anthropic.go - Middleware fuer /v1/messages
// Enthaelt: AnthropicMessagesMiddleware, MessagesWriter
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/toolfence/anthropic"
)

// MessagesWriter wandelt Chat-Zeilen in Messages-Antworten bzw. SSE-Events
type MessagesWriter struct {
	BaseWriter
	stream    bool
	id        string
	converter *anthropic.StreamConverter
}

func (w *MessagesWriter) writeLine(l chatLine) error {
	switch {
	case l.Error != "" && w.stream:
		return w.writeSSE("error", anthropic.StreamErrorEvent{
			Type:  "error",
			Error: anthropic.Error{Type: "api_error", Message: l.Error},
		})
	case l.Error != "":
		return w.writeJSON(anthropic.NewError(http.StatusInternalServerError, l.Error))
	case w.stream:
		for _, ev := range w.converter.Process(l.ChatResponse) {
			if err := w.writeSSE(ev.Event, ev.Data); err != nil {
				return err
			}
		}
		return nil
	default:
		return w.writeJSON(anthropic.ToMessagesResponse(w.id, l.ChatResponse))
	}
}

// Write implementiert io.Writer fuer MessagesWriter
func (w *MessagesWriter) Write(data []byte) (int, error) {
	if code := w.ResponseWriter.Status(); code != http.StatusOK {
		serr, err := statusError(data)
		if err != nil {
			return 0, err
		}
		if err := w.writeJSON(anthropic.NewError(code, serr.ErrorMessage)); err != nil {
			return 0, err
		}
		return len(data), nil
	}

	l, err := decodeLine(data)
	if err != nil {
		return 0, err
	}
	if err := w.writeLine(l); err != nil {
		return 0, err
	}
	return len(data), nil
}

// AnthropicMessagesMiddleware uebersetzt die Messages-API auf den nativen Chat-Handler
func AnthropicMessagesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req anthropic.MessagesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, anthropic.NewError(http.StatusBadRequest, err.Error()))
			return
		}

		if len(req.Messages) == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, anthropic.NewError(http.StatusBadRequest, "messages: at least one message is required"))
			return
		}

		chatReq, err := anthropic.FromMessagesRequest(req)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, anthropic.NewError(http.StatusBadRequest, err.Error()))
			return
		}

		if err := rewriteBody(c, *chatReq); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, anthropic.NewError(http.StatusInternalServerError, err.Error()))
			return
		}

		id := anthropic.GenerateMessageID()
		c.Writer = &MessagesWriter{
			BaseWriter: BaseWriter{ResponseWriter: c.Writer},
			stream:     req.Stream,
			id:         id,
			converter:  anthropic.NewStreamConverter(id, req.Model),
		}

		c.Next()
	}
}

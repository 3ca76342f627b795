// openai.go - Middleware fuer /v1/chat/completions
// Enthaelt: ChatMiddleware, ChatWriter
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/toolfence/openai"
)

// ChatWriter wandelt Chat-Zeilen in Chat-Completions (streaming und non-streaming)
type ChatWriter struct {
	BaseWriter
	stream        bool
	streamOptions *openai.StreamOptions
	id            string
	toolCallSent  bool
}

func (w *ChatWriter) writeLine(l chatLine) error {
	if l.Error != "" {
		e := openai.NewError(http.StatusInternalServerError, l.Error)
		if w.stream {
			return w.writeSSE("", e)
		}
		return w.writeJSON(e)
	}

	if !w.stream {
		return w.writeJSON(openai.ToChatCompletion(w.id, l.ChatResponse))
	}

	chunk := openai.ToChunk(w.id, l.ChatResponse, w.toolCallSent)
	if len(chunk.Choices) > 0 && len(chunk.Choices[0].Delta.ToolCalls) > 0 {
		w.toolCallSent = true
	}
	if err := w.writeSSE("", chunk); err != nil {
		return err
	}
	if !l.Done {
		return nil
	}

	if w.streamOptions != nil && w.streamOptions.IncludeUsage {
		u := openai.ToUsage(l.ChatResponse)
		chunk.Usage = &u
		chunk.Choices = []openai.ChunkChoice{}
		if err := w.writeSSE("", chunk); err != nil {
			return err
		}
	}
	_, err := w.ResponseWriter.Write([]byte("data: [DONE]\n\n"))
	return err
}

// Write implementiert io.Writer fuer ChatWriter
func (w *ChatWriter) Write(data []byte) (int, error) {
	if code := w.ResponseWriter.Status(); code != http.StatusOK {
		serr, err := statusError(data)
		if err != nil {
			return 0, err
		}
		if err := w.writeJSON(openai.NewError(code, serr.ErrorMessage)); err != nil {
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

// ChatMiddleware uebersetzt Chat-Completions auf den nativen Chat-Handler
func ChatMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req openai.ChatCompletionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, openai.NewError(http.StatusBadRequest, err.Error()))
			return
		}

		if len(req.Messages) == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, openai.NewError(http.StatusBadRequest, "[] is too short - 'messages'"))
			return
		}

		chatReq, err := openai.FromChatRequest(req)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, openai.NewError(http.StatusBadRequest, err.Error()))
			return
		}

		if err := rewriteBody(c, *chatReq); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, openai.NewError(http.StatusInternalServerError, err.Error()))
			return
		}

		c.Writer = &ChatWriter{
			BaseWriter:    BaseWriter{ResponseWriter: c.Writer},
			stream:        req.Stream,
			streamOptions: req.StreamOptions,
			id:            completionID(),
		}

		c.Next()
	}
}

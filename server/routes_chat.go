// Package server - Chat Handler fuer /api/chat Endpoint
// Beinhaltet: ChatHandler, runChat (Upstream -> Tool-Parser -> NDJSON),
// collectChatResponse fuer stream=false
package server

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/envconfig"
	"github.com/7blacky7/toolfence/fence"
	"github.com/7blacky7/toolfence/llm"
	"github.com/7blacky7/toolfence/logutil"
	"github.com/7blacky7/toolfence/template"
	"github.com/7blacky7/toolfence/tools"
)

// modelOptions legt die Request-Optionen ueber Defaults und Env-Limits.
func modelOptions(requestOpts map[string]any) (api.Options, error) {
	opts := api.DefaultOptions()
	opts.MaxPrefix = int(envconfig.MaxPrefix())
	opts.MaxFenceBytes = int(envconfig.MaxFenceBytes())
	if err := opts.FromMap(requestOpts); err != nil {
		return api.Options{}, err
	}
	return opts, nil
}

// detectionMode waehlt den Modus aus Request oder TOOLFENCE_MODE.
func detectionMode(requested string) (fence.Mode, error) {
	return fence.ParseMode(cmp.Or(requested, envconfig.Mode()))
}

// newToolParser erzeugt den Parser fuer eine Antwort.
func newToolParser(mode fence.Mode, opts api.Options, tt api.Tools) *tools.Parser {
	p := tools.NewParser(mode, fence.Options{
		MaxPrefix:     opts.MaxPrefix,
		MaxFenceBytes: opts.MaxFenceBytes,
	}, tt)
	p.Strict = envconfig.Strict()
	return p
}

// ChatHandler verarbeitet /api/chat Anfragen
func (s *Server) ChatHandler(c *gin.Context) {
	checkpointStart := time.Now()

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Model = cmp.Or(req.Model, envconfig.Model())
	if req.Model == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "model is required"})
		return
	}

	if len(req.Messages) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "messages are required"})
		return
	}

	mode, err := detectionMode(req.Mode)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := modelOptions(req.Options)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(opts.Stop) == 0 {
		opts.Stop = s.stop
	}

	var b strings.Builder
	if err := s.chatTemplate().Execute(&b, template.Values{Messages: req.Messages, Tools: req.Tools}); err != nil {
		slog.Error("chat prompt error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	prompt := b.String()

	slog.Debug("chat request", "model", req.Model, "mode", mode, "messages", len(req.Messages), "tools", len(req.Tools))
	logutil.Trace("chat prompt", "prompt", prompt)

	// ohne Tools gibt es nichts zu erkennen, der Text geht unveraendert durch
	var toolParser *tools.Parser
	if len(req.Tools) > 0 {
		toolParser = newToolParser(mode, opts, req.Tools)
	}

	ch := make(chan any)
	go s.runChat(c.Request.Context(), ch, req, llm.CompletionRequest{
		Model:   req.Model,
		Prompt:  prompt,
		Options: &opts,
	}, toolParser, checkpointStart)

	if req.Stream != nil && !*req.Stream {
		s.collectChatResponse(c, ch)
		return
	}

	streamResponse(c, ch)
}

// runChat liest den Upstream in einer Goroutine und laesst die Chunks in
// einer zweiten durch den Tool-Parser laufen. Beide enden, sobald eine von
// ihnen scheitert oder der Client die Verbindung schliesst.
func (s *Server) runChat(ctx context.Context, ch chan<- any, req api.ChatRequest, creq llm.CompletionRequest, toolParser *tools.Parser, checkpointStart time.Time) {
	defer close(ch)

	chunks := make(chan llm.CompletionResponse)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chunks)
		return s.completer.Complete(gctx, creq, func(cr llm.CompletionResponse) error {
			select {
			case chunks <- cr:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	g.Go(func() error {
		var evalCount, toolCallCount int
		for cr := range chunks {
			res := api.ChatResponse{
				Model:     req.Model,
				CreatedAt: time.Now().UTC(),
				Message:   api.Message{Role: "assistant", Content: cr.Content},
			}

			if cr.Content != "" {
				evalCount++
			}

			if toolParser != nil {
				calls, content := toolParser.Add(cr.Content)
				if cr.Done {
					drained, rest := toolParser.Drain()
					calls = append(calls, drained...)
					content += rest
				}
				res.Message.Content = content
				res.Message.ToolCalls = calls
				toolCallCount += len(calls)

				if toolParser.Failed() {
					res.Failed = true
					res.FailedReason = toolParser.Err().Error()
				}
			}

			if cr.Done {
				res.Done = true
				res.DoneReason = cr.DoneReason.String()
				res.Metrics = api.Metrics{
					TotalDuration: time.Since(checkpointStart),
					EvalCount:     cmp.Or(cr.EvalCount, evalCount),
					ToolCallCount: toolCallCount,
				}
			} else if res.Message.Content == "" && len(res.Message.ToolCalls) == 0 {
				continue
			}

			// bis zum Abbruch durch den Client wird alles Erzeugte ausgeliefert
			select {
			case ch <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			slog.Debug("chat stream cancelled by client")
			return
		}
		slog.Error("chat completion failed", "model", req.Model, "error", err)
		select {
		case ch <- errorResponse(err):
		case <-ctx.Done():
		}
	}
}

// collectChatResponse fasst den Stream fuer stream=false zu einer Antwort
// zusammen.
func (s *Server) collectChatResponse(c *gin.Context, ch chan any) {
	var resp api.ChatResponse
	var toolCalls []api.ToolCall
	var sbContent strings.Builder
	for rr := range ch {
		switch t := rr.(type) {
		case api.ChatResponse:
			sbContent.WriteString(t.Message.Content)
			toolCalls = append(toolCalls, t.Message.ToolCalls...)
			failed := resp.Failed || t.Failed
			reason := cmp.Or(resp.FailedReason, t.FailedReason)
			resp = t
			resp.Failed, resp.FailedReason = failed, reason
		case gin.H:
			msg, ok := t["error"].(string)
			if !ok {
				msg = "unexpected error format in response"
			}

			status, ok := t["status"].(int)
			if !ok {
				status = http.StatusInternalServerError
			}

			c.JSON(status, gin.H{"error": msg})
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected response"})
			return
		}
	}

	resp.Message.Content = sbContent.String()
	resp.Message.ToolCalls = toolCalls

	c.JSON(http.StatusOK, resp)
}

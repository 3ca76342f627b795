// ollama.go - Completer fuer ollama-kompatible Upstreams
// Enthaelt: OllamaCompleter, Request-Aufbau und NDJSON-Stream-Verarbeitung
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/7blacky7/toolfence/api"
)

// OllamaCompleter generiert ueber POST /api/generate mit raw=true, damit das
// Upstream-Template den bereits gerenderten Prompt nicht noch einmal umhuellt.
type OllamaCompleter struct {
	base *url.URL
	http *http.Client
}

func NewOllamaCompleter(upstream string, client *http.Client) (*OllamaCompleter, error) {
	base, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream %q: %w", upstream, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaCompleter{base: base, http: client}, nil
}

type generateRequest struct {
	Model   string       `json:"model"`
	Prompt  string       `json:"prompt"`
	Raw     bool         `json:"raw"`
	Stream  bool         `json:"stream"`
	Options *api.Options `json:"options,omitempty"`
}

type generateResponse struct {
	Response     string `json:"response"`
	Done         bool   `json:"done"`
	DoneReason   string `json:"done_reason,omitempty"`
	EvalCount    int    `json:"eval_count,omitempty"`
	EvalDuration int64  `json:"eval_duration,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (c *OllamaCompleter) Complete(ctx context.Context, req CompletionRequest, fn func(CompletionResponse) error) error {
	var opts *api.Options
	if req.Options != nil {
		// Detector-Limits bleiben lokal
		o := *req.Options
		o.MaxPrefix, o.MaxFenceBytes = 0, 0
		opts = &o
	}

	bts, err := json.Marshal(generateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Raw:     true,
		Stream:  true,
		Options: opts,
	})
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath("/api/generate").String(), bytes.NewReader(bts))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("POST upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		apiErr := api.StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.ErrorMessage == "" {
			apiErr.ErrorMessage = string(bytes.TrimSpace(body))
		}
		return apiErr
	}

	return processCompletionStream(ctx, resp.Body, fn)
}

func processCompletionStream(ctx context.Context, body io.Reader, fn func(CompletionResponse) error) error {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, maxBufferSize)
	scanner.Buffer(buf, maxBufferSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var g generateResponse
		if err := json.Unmarshal(line, &g); err != nil {
			return fmt.Errorf("error unmarshalling llm prediction response: %w", err)
		}
		if g.Error != "" {
			return errors.New(g.Error)
		}

		if g.Response != "" {
			if err := fn(CompletionResponse{Content: g.Response}); err != nil {
				return err
			}
		}

		if g.Done {
			return fn(CompletionResponse{
				Done:         true,
				DoneReason:   parseDoneReason(g.DoneReason),
				EvalCount:    g.EvalCount,
				EvalDuration: time.Duration(g.EvalDuration),
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading llm response: %w", err)
	}

	// Stream endete ohne done-Zeile
	slog.Debug("upstream closed stream without done")
	return fn(CompletionResponse{Done: true, DoneReason: DoneReasonConnectionClosed})
}

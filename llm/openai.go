// openai.go - Completer fuer OpenAI-kompatible /v1/completions Endpunkte
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAICompleter struct {
	client *openai.Client
}

// NewOpenAICompleter erzeugt einen Completer fuer baseURL (inklusive /v1).
// Ein leerer baseURL nutzt die offizielle OpenAI-API.
func NewOpenAICompleter(baseURL, apiKey string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(cfg)}
}

func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest, fn func(CompletionResponse) error) error {
	creq := openai.CompletionRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: true,
	}
	if o := req.Options; o != nil {
		creq.Stop = o.Stop
		creq.Temperature = o.Temperature
		creq.TopP = o.TopP
		creq.PresencePenalty = o.PresencePenalty
		creq.FrequencyPenalty = o.FrequencyPenalty
		if o.NumPredict > 0 {
			creq.MaxTokens = o.NumPredict
		}
		if o.Seed >= 0 {
			seed := o.Seed
			creq.Seed = &seed
		}
	}

	stream, err := c.client.CreateCompletionStream(ctx, creq)
	if err != nil {
		return fmt.Errorf("openai completion: %w", err)
	}
	defer stream.Close()

	var count int
	reason := DoneReasonConnectionClosed
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return fn(CompletionResponse{Done: true, DoneReason: reason, EvalCount: count})
		}
		if err != nil {
			return fmt.Errorf("openai stream: %w", err)
		}

		for _, choice := range resp.Choices {
			if choice.FinishReason != "" {
				reason = parseDoneReason(choice.FinishReason)
			}
			if choice.Text == "" {
				continue
			}
			count++
			if err := fn(CompletionResponse{Content: choice.Text}); err != nil {
				return err
			}
		}
	}
}

// tools_parser.go - Streaming-Parser fuer Tool-Aufrufe
// Enthaelt: Parser-Struktur, Add/Drain und das Zusammenspiel mit fence.Detector
//
// Der Parser koppelt genau einen Detector mit ParseCalls. Normaler Text
// wird sofort als Content weitergegeben, Payload-Text wird zurueckgehalten
// und nur dann doch als Content ausgegeben, wenn er keinen Tool-Call enthaelt
// oder die Erkennung scheitert.

package tools

import (
	"log/slog"
	"strings"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/fence"
	"github.com/7blacky7/toolfence/logutil"
)

type Parser struct {
	mode     fence.Mode
	tools    api.Tools
	detector fence.Detector

	// Strict verwirft Tool-Calls, deren Name in keinem Tool vorkommt.
	Strict bool

	pending strings.Builder
	n       int
	err     error
}

// NewParser erzeugt einen Parser fuer genau eine Generierung.
func NewParser(mode fence.Mode, opts fence.Options, tools api.Tools) *Parser {
	return &Parser{
		mode:     mode,
		tools:    tools,
		detector: fence.New(mode, opts),
	}
}

// Err gibt den Grund zurueck, warum die Erkennung aufgegeben wurde.
func (p *Parser) Err() error {
	return p.err
}

func (p *Parser) Failed() bool {
	return p.err != nil
}

// Add verarbeitet einen Chunk und gibt die darin abgeschlossenen Tool-Calls
// sowie den anzeigbaren Text zurueck.
func (p *Parser) Add(s string) (calls []api.ToolCall, content string) {
	p.detector.AddChunk(s)

	var sb strings.Builder
	for {
		r := p.detector.Process()
		logutil.Trace("tool parser processed chunk", "mode", p.mode, "delta", r.Delta, "complete", r.Complete, "waiting", r.WaitingForStart, "failed", r.Failed, "buffer", p.detector.Buffer())

		if r.Failed {
			if p.err == nil {
				slog.Debug("tool call detection failed", "mode", p.mode, "error", r.Err)
				p.err = r.Err
			}
			sb.WriteString(p.pending.String())
			p.pending.Reset()
			sb.WriteString(r.Content)
			break
		}

		sb.WriteString(r.Content)
		p.pending.WriteString(r.Delta[len(r.Content):])
		if !r.Complete {
			break
		}

		found := p.emit(ParseCalls(r.Payload).Calls)
		if len(found) == 0 {
			slog.Debug("payload without tool call", "mode", p.mode, "payload", r.Payload)
			sb.WriteString(p.pending.String())
		}
		p.pending.Reset()
		calls = append(calls, found...)

		p.detector.Reset()
		if p.detector.Buffer() == "" {
			break
		}
	}

	return calls, sb.String()
}

// Drain wird am Stream-Ende aufgerufen. Ein nicht geschlossener Payload
// wird noch einmal als Ganzes geparst, alles andere wird Content.
func (p *Parser) Drain() (calls []api.ToolCall, content string) {
	payload := p.pending.String()
	p.pending.Reset()
	rest := payload + p.detector.Flush()

	if payload != "" {
		if res := ParseCalls(rest); len(res.Calls) > 0 {
			slog.Debug("parsed unterminated payload", "mode", p.mode, "calls", len(res.Calls))
			return p.emit(res.Calls), res.TextContent
		}
	}

	return nil, rest
}

// emit nummeriert Calls fortlaufend und prueft die Namen gegen die Tools.
func (p *Parser) emit(calls []api.ToolCall) []api.ToolCall {
	out := calls[:0]
	for _, call := range calls {
		if len(p.tools) > 0 {
			if _, ok := p.tools.Lookup(call.Function.Name); !ok {
				suggestion, _ := Suggest(call.Function.Name, p.tools)
				slog.Warn("model called unknown tool", "name", call.Function.Name, "suggestion", suggestion, "strict", p.Strict)
				if p.Strict {
					continue
				}
			}
		}

		call.Function.Index = p.n
		p.n++
		out = append(out, call)
	}
	return out
}

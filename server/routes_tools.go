// routes_tools.go - Zustandslose Handler rund um die Tool-Call-Erkennung
// Enthaelt: ParseHandler, ExtractHandler, PromptHandler

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/fence"
	"github.com/7blacky7/toolfence/template"
)

// bindJSON liest den Body in v und antwortet bei Fehlern selbst.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return false
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// ParseHandler laesst fertigen Text durch denselben Parser wie /api/chat.
func (s *Server) ParseHandler(c *gin.Context) {
	var req api.ParseRequest
	if !bindJSON(c, &req) {
		return
	}

	mode, err := detectionMode(req.Mode)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts, err := modelOptions(nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	p := newToolParser(mode, opts, req.Tools)
	calls, content := p.Add(req.Text)
	drained, rest := p.Drain()

	resp := api.ParseResponse{
		Content:   content + rest,
		ToolCalls: append(calls, drained...),
		Failed:    p.Failed(),
	}
	if p.Failed() {
		resp.Error = p.Err().Error()
	}

	c.JSON(http.StatusOK, resp)
}

// ExtractHandler sucht JSON-Literale in beliebigem Text.
func (s *Server) ExtractHandler(c *gin.Context) {
	var req api.ExtractRequest
	if !bindJSON(c, &req) {
		return
	}

	values := []json.RawMessage{}
	for from := 0; ; {
		value, end, ok := fence.ExtractFrom(req.Text, from)
		if !ok {
			break
		}
		values = append(values, json.RawMessage(value))
		if !req.All {
			break
		}
		from = end
	}

	c.JSON(http.StatusOK, api.ExtractResponse{Values: values})
}

// PromptHandler liefert den System-Prompt fuer eine Tool-Liste.
func (s *Server) PromptHandler(c *gin.Context) {
	var req api.PromptRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, api.PromptResponse{Prompt: template.SystemPrompt(req.System, req.Tools)})
}

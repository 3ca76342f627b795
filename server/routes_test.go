package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/7blacky7/toolfence/api"
	"github.com/7blacky7/toolfence/llm"
	"github.com/7blacky7/toolfence/template"
	"github.com/7blacky7/toolfence/version"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeCompleter spielt feste Chunks ab und merkt sich den letzten Request.
type fakeCompleter struct {
	chunks []string
	err    error
	got    llm.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest, fn func(llm.CompletionResponse) error) error {
	f.got = req
	for _, c := range f.chunks {
		if err := fn(llm.CompletionResponse{Content: c}); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	return fn(llm.CompletionResponse{Done: true, DoneReason: llm.DoneReasonStop})
}

func newTestRouter(t *testing.T, completer llm.Completer) http.Handler {
	t.Helper()
	s := &Server{
		completer: completer,
		template:  template.DefaultChat(),
		stop:      template.DefaultStop,
	}
	h, err := s.GenerateRoutes()
	require.NoError(t, err)
	return h
}

type response struct {
	Code   int
	Header http.Header
	Body   []byte
}

// doRequest geht ueber einen echten Listener, c.Stream braucht einen
// ResponseWriter mit CloseNotify.
func doRequest(t *testing.T, h http.Handler, method, path string, body any) response {
	t.Helper()
	ts := httptest.NewServer(h)
	defer ts.Close()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		bts, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(bts)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	bts, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{Code: resp.StatusCode, Header: resp.Header, Body: bts}
}

func TestGeneralRoutes(t *testing.T) {
	h := newTestRouter(t, &fakeCompleter{})

	w := doRequest(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "toolfence is running", string(w.Body))

	w = doRequest(t, h, http.MethodHead, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body, &v))
	require.Equal(t, version.Version, v.Version)

	w = doRequest(t, h, http.MethodGet, "/api/parse", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAllowedHostsMiddleware(t *testing.T) {
	local := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 11435}

	tests := []struct {
		name   string
		addr   net.Addr
		method string
		host   string
		want   int
	}{
		{"Localhost", local, http.MethodGet, "localhost:11435", http.StatusOK},
		{"Loopback IP", local, http.MethodGet, "127.0.0.1:11435", http.StatusOK},
		{"Private IP", local, http.MethodGet, "192.168.1.5", http.StatusOK},
		{"Lokale TLD", local, http.MethodGet, "box.internal", http.StatusOK},
		{"Fremder Host", local, http.MethodGet, "example.com", http.StatusForbidden},
		{"Preflight lokal", local, http.MethodOptions, "app.localhost", http.StatusNoContent},
		{"Oeffentlicher Listener", &net.TCPAddr{IP: net.ParseIP("0.0.0.0"), Port: 11435}, http.MethodGet, "example.com", http.StatusOK},
		{"Ohne Adresse", nil, http.MethodGet, "example.com", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(allowedHostsMiddleware(tt.addr))
			r.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/", nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAllowedHost(t *testing.T) {
	for host, want := range map[string]bool{
		"":                 true,
		"localhost":        true,
		"LOCALHOST":        true,
		"printer.local":    true,
		"db.internal":      true,
		"example.com":      false,
		"localhost.evil.x": false,
	} {
		require.Equal(t, want, allowedHost(host), "host %q", host)
	}
}

func TestParseHandler(t *testing.T) {
	h := newTestRouter(t, &fakeCompleter{})
	tools := api.Tools{testTool("get_weather")}

	t.Run("Fence mit Aufruf", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/api/parse", api.ParseRequest{
			Text:  "Moment.\n```tool_call\n{\"name\": \"get_weather\", \"arguments\": {\"city\": \"Berlin\"}}\n```",
			Tools: tools,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.ParseResponse
		require.NoError(t, json.Unmarshal(w.Body, &resp))
		require.Equal(t, "Moment.\n", resp.Content)
		require.Len(t, resp.ToolCalls, 1)
		require.Equal(t, "get_weather", resp.ToolCalls[0].Function.Name)
		require.Equal(t, `{"city":"Berlin"}`, resp.ToolCalls[0].Function.Arguments.String())
		require.False(t, resp.Failed)
	})

	t.Run("Bare-Modus", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/api/parse", api.ParseRequest{
			Text: `{"name": "get_weather", "arguments": {}}`,
			Mode: "bare",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.ParseResponse
		require.NoError(t, json.Unmarshal(w.Body, &resp))
		require.Empty(t, resp.Content)
		require.Len(t, resp.ToolCalls, 1)
	})

	t.Run("Bare-Modus gescheitert", func(t *testing.T) {
		text := `[1, 2}`
		w := doRequest(t, h, http.MethodPost, "/api/parse", api.ParseRequest{Text: text, Mode: "bare"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp api.ParseResponse
		require.NoError(t, json.Unmarshal(w.Body, &resp))
		require.True(t, resp.Failed)
		require.Equal(t, "root mismatch", resp.Error)
		require.Equal(t, text, resp.Content)
		require.Empty(t, resp.ToolCalls)
	})

	t.Run("Unbekannter Modus", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/api/parse", api.ParseRequest{Text: "x", Mode: "xml"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Ohne Body", func(t *testing.T) {
		w := doRequest(t, h, http.MethodPost, "/api/parse", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, string(w.Body), "missing request body")
	})
}

func TestExtractHandler(t *testing.T) {
	h := newTestRouter(t, &fakeCompleter{})
	text := `Erst {"a":1}, dann [1,2] und {kaputt}`

	tests := []struct {
		name string
		req  api.ExtractRequest
		want []string
	}{
		{"Erstes", api.ExtractRequest{Text: text}, []string{`{"a":1}`}},
		{"Alle", api.ExtractRequest{Text: text, All: true}, []string{`{"a":1}`, `[1,2]`}},
		{"Keine", api.ExtractRequest{Text: "nur Text", All: true}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, http.MethodPost, "/api/extract", tt.req)
			require.Equal(t, http.StatusOK, w.Code)

			var resp api.ExtractResponse
			require.NoError(t, json.Unmarshal(w.Body, &resp))
			got := make([]string, len(resp.Values))
			for i, v := range resp.Values {
				got[i] = string(v)
			}
			require.Equal(t, tt.want, got)
		})
	}

	w := doRequest(t, h, http.MethodPost, "/api/extract", api.ExtractRequest{Text: "leer"})
	require.JSONEq(t, `{"values":[]}`, string(w.Body))
}

func TestPromptHandler(t *testing.T) {
	h := newTestRouter(t, &fakeCompleter{})
	tools := api.Tools{testTool("get_weather")}

	w := doRequest(t, h, http.MethodPost, "/api/prompt", api.PromptRequest{System: "Sei hilfreich.", Tools: tools})
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.PromptResponse
	require.NoError(t, json.Unmarshal(w.Body, &resp))
	require.Equal(t, template.SystemPrompt("Sei hilfreich.", tools), resp.Prompt)
	require.True(t, strings.HasPrefix(resp.Prompt, "Sei hilfreich."))

	w = doRequest(t, h, http.MethodPost, "/api/prompt", api.PromptRequest{})
	require.JSONEq(t, `{"prompt":""}`, string(w.Body))
}

func TestChatTemplateFromEnvironment(t *testing.T) {
	t.Setenv("TOOLFENCE_TEMPLATE", "")
	tmpl, stop, err := loadChatTemplate()
	require.NoError(t, err)
	require.Same(t, template.DefaultChat(), tmpl)
	require.Equal(t, template.DefaultStop, stop)

	dir := t.TempDir()
	custom := filepath.Join(dir, "chat.tmpl")
	require.NoError(t, os.WriteFile(custom, []byte("{{ .System }}{{ range .Messages }}<{{ .Role }}>{{ .Content }}{{ end }}<assistant>"), 0o644))
	t.Setenv("TOOLFENCE_TEMPLATE", custom)
	tmpl, stop, err = loadChatTemplate()
	require.NoError(t, err)
	require.Nil(t, stop)

	var b strings.Builder
	require.NoError(t, tmpl.Execute(&b, template.Values{Messages: []api.Message{{Role: "user", Content: "hi"}}}))
	require.Equal(t, "<user>hi<assistant>", b.String())

	noMessages := filepath.Join(dir, "bad.tmpl")
	require.NoError(t, os.WriteFile(noMessages, []byte("{{ .System }}"), 0o644))
	t.Setenv("TOOLFENCE_TEMPLATE", noMessages)
	_, _, err = loadChatTemplate()
	require.Error(t, err)

	t.Setenv("TOOLFENCE_TEMPLATE", filepath.Join(dir, "fehlt.tmpl"))
	_, _, err = loadChatTemplate()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestErrorResponse(t *testing.T) {
	h := errorResponse(api.StatusError{StatusCode: http.StatusNotFound, ErrorMessage: "model not found"})
	require.Equal(t, gin.H{"error": "model not found", "status": http.StatusNotFound}, h)

	h = errorResponse(errors.New("boom"))
	require.Equal(t, gin.H{"error": "boom"}, h)
}

// readStream dekodiert eine NDJSON-Antwort.
func readStream(t *testing.T, body []byte) []api.ChatResponse {
	t.Helper()
	var out []api.ChatResponse
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		var resp api.ChatResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp), "Zeile %q", scanner.Text())
		out = append(out, resp)
	}
	require.NoError(t, scanner.Err())
	return out
}

func testTool(name string) api.Tool {
	props := api.NewToolPropertiesMap()
	props.Set("city", api.ToolProperty{Type: api.PropertyType{"string"}, Description: "Stadt"})
	return api.Tool{
		Type: "function",
		Function: api.ToolFunction{
			Name:        name,
			Description: "Liefert das Wetter",
			Parameters: api.ToolFunctionParameters{
				Type:       "object",
				Required:   []string{"city"},
				Properties: props,
			},
		},
	}
}

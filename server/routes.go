// Package server - Haupt-Router und Server-Setup fuer toolfence
// Beinhaltet: Server-Struct, Router-Registrierung, Server-Start
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/7blacky7/toolfence/envconfig"
	"github.com/7blacky7/toolfence/llm"
	"github.com/7blacky7/toolfence/logutil"
	"github.com/7blacky7/toolfence/middleware"
	"github.com/7blacky7/toolfence/template"
	"github.com/7blacky7/toolfence/version"
)

var mode string = gin.DebugMode

// Server verbindet den HTTP-Router mit dem Modell-Backend
type Server struct {
	addr      net.Addr
	completer llm.Completer

	// template rendert den Gespraechsverlauf, stop sind die passenden
	// Default-Stop-Sequenzen (leer bei eigenem Template). Bei eigenem
	// Template tauscht der Watcher es zur Laufzeit aus.
	mu       sync.RWMutex
	template *template.Template
	stop     []string
}

func (s *Server) chatTemplate() *template.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

func (s *Server) setChatTemplate(t *template.Template) {
	s.mu.Lock()
	s.template = t
	s.mu.Unlock()
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() (http.Handler, error) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(
		cors.New(corsConfig),
		allowedHostsMiddleware(s.addr),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "toolfence is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "toolfence is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Inference
	r.POST("/api/chat", s.ChatHandler)

	// Tool-Call-Erkennung ohne Modell
	r.POST("/api/parse", s.ParseHandler)
	r.POST("/api/extract", s.ExtractHandler)
	r.POST("/api/prompt", s.PromptHandler)

	// OpenAI-kompatibel
	r.POST("/v1/chat/completions", middleware.ChatMiddleware(), s.ChatHandler)

	// Anthropic-kompatibel
	r.POST("/v1/messages", middleware.AnthropicMessagesMiddleware(), s.ChatHandler)

	return r, nil
}

// loadChatTemplate laedt das Template aus TOOLFENCE_TEMPLATE oder nimmt
// das eingebaute Format samt Stop-Sequenzen.
func loadChatTemplate() (*template.Template, []string, error) {
	path := envconfig.Template()
	if path == "" {
		return template.DefaultChat(), template.DefaultStop, nil
	}

	t, err := readChatTemplate(path)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("using custom chat template", "path", path)
	return t, nil, nil
}

func readChatTemplate(path string) (*template.Template, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chat template: %w", err)
	}

	t, err := template.Parse(string(bts))
	if err != nil {
		return nil, fmt.Errorf("parse chat template %s: %w", path, err)
	}
	return t, nil
}

// Serve startet den HTTP-Server
func Serve(ln net.Listener) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	completer, err := llm.FromEnvironment()
	if err != nil {
		return err
	}

	tmpl, stop, err := loadChatTemplate()
	if err != nil {
		return err
	}

	s := &Server{
		addr:      ln.Addr(),
		completer: completer,
		template:  tmpl,
		stop:      stop,
	}

	// listen for a ctrl+c and close open streams
	ctx, done := context.WithCancel(context.Background())
	defer done()

	if path := envconfig.Template(); path != "" {
		w, err := s.watchTemplate(ctx, path)
		if err != nil {
			slog.Warn("chat template reload disabled", "path", path, "error", err)
		} else {
			defer w.Close()
		}
	}

	h, err := s.GenerateRoutes()
	if err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version))
	slog.Info("model backend", "backend", envconfig.Backend(), "upstream", envconfig.Upstream())
	srvr := &http.Server{
		Handler: h,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case <-signals:
			srvr.Close()
			done()
		case <-ctx.Done():
		}
	}()

	err = srvr.Serve(ln)
	// If server is closed from the signal handler, wait for the ctx to be done
	// otherwise error out quickly
	if err != http.ErrServerClosed {
		return err
	}
	<-ctx.Done()
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quicktok/quicktok/api"
	"github.com/quicktok/quicktok/logutil"
	"github.com/quicktok/quicktok/metrics"
	"github.com/quicktok/quicktok/tokenizer"
)

// Server exposes one loaded tokenizer over HTTP. It never trains, loads or
// saves, so handlers only read tokenizer state and may run concurrently.
type Server struct {
	model   string
	tok     *tokenizer.BasicTokenizer
	metrics *metrics.Metrics
	origins []string
}

func New(model string, tok *tokenizer.BasicTokenizer, origins []string) *Server {
	return &Server{
		model:   model,
		tok:     tok,
		metrics: metrics.New(),
		origins: origins,
	}
}

func (s *Server) GenerateRoutes() (http.Handler, error) {
	config := cors.DefaultConfig()
	config.AllowWildcard = true
	config.AllowBrowserExtensions = true
	config.AllowOrigins = s.origins
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		cors.New(config),
		s.instrument,
	)

	r.POST("/api/encode", s.EncodeHandler)
	r.POST("/api/decode", s.DecodeHandler)
	r.GET("/api/info", s.InfoHandler)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "quicktok is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "quicktok is running") })

	return r, nil
}

// instrument counts every routed request and logs it at debug level.
func (s *Server) instrument(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		return
	}

	status := c.Writer.Status()
	s.metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	slog.Debug("request", "method", c.Request.Method, "route", route, "status", status, "elapsed", time.Since(start))
}

// bind decodes the JSON body into req, aborting with 400 on failure.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	switch {
	case errors.Is(err, io.EOF):
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Message: "missing request body", Code: api.ErrCodeInvalidRequest})
		return false
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error(), Code: api.ErrCodeInvalidRequest})
		return false
	}

	return true
}

func (s *Server) EncodeHandler(c *gin.Context) {
	var req api.EncodeRequest
	if !bind(c, &req) {
		return
	}

	var ids []int
	if req.Special {
		ids = s.tok.EncodeSpecial(req.Text)
	} else {
		ids = s.tok.Encode(req.Text)
	}

	if ids == nil {
		ids = []int{}
	}

	s.metrics.Bytes.Add(float64(len(req.Text)))
	s.metrics.Tokens.Observe(float64(len(ids)))
	logutil.Trace("encoded", "bytes", len(req.Text), "tokens", len(ids))

	c.JSON(http.StatusOK, api.EncodeResponse{IDs: ids})
}

func (s *Server) DecodeHandler(c *gin.Context) {
	var req api.DecodeRequest
	if !bind(c, &req) {
		return
	}

	text, err := s.tok.Decode(req.IDs)
	if err != nil {
		abortWithError(c, err)
		return
	}

	logutil.Trace("decoded", "tokens", len(req.IDs), "bytes", len(text))
	c.JSON(http.StatusOK, api.DecodeResponse{Text: text})
}

func (s *Server) InfoHandler(c *gin.Context) {
	resp := api.InfoResponse{
		Model:     s.model,
		Version:   tokenizer.ModelVersion,
		Pattern:   s.tok.Pattern(),
		VocabSize: s.tok.VocabSize(),
		Merges:    []api.Merge{},
		Specials:  []api.SpecialToken{},
	}

	for _, rule := range s.tok.Merges() {
		token, _ := s.tok.Render(rule.ID)
		resp.Merges = append(resp.Merges, api.Merge{ID: rule.ID, Left: rule.Pair.Left, Right: rule.Pair.Right, Token: token})
	}

	for _, special := range s.tok.SpecialTokens() {
		resp.Specials = append(resp.Specials, api.SpecialToken{ID: special.ID, Literal: special.Literal})
	}

	c.JSON(http.StatusOK, resp)
}

// abortWithError maps tokenizer error kinds to HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, api.ErrCodeGeneral
	switch {
	case errors.Is(err, tokenizer.ErrUnknownToken):
		status, code = http.StatusNotFound, api.ErrCodeUnknownToken
	case errors.Is(err, tokenizer.ErrPrecondition):
		status, code = http.StatusBadRequest, api.ErrCodePrecondition
	case errors.Is(err, tokenizer.ErrInvalidData):
		status, code = http.StatusBadRequest, api.ErrCodeInvalidData
	case errors.Is(err, tokenizer.ErrIO):
		code = api.ErrCodeIO
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.AbortWithStatusJSON(status, api.ErrorResponse{Message: err.Error(), Code: code})
}

// Serve handles requests on ln until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, ln net.Listener, s *Server) error {
	h, err := s.GenerateRoutes()
	if err != nil {
		return err
	}

	srvr := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Listening on", "addr", ln.Addr(), "model", s.model, "vocab_size", s.tok.VocabSize())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srvr.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srvr.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

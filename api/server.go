// Package api serves the swap pool and its two token ledgers over HTTP/JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	swapkeeper "github.com/paw-chain/swap/x/swap/keeper"
	tokentypes "github.com/paw-chain/swap/x/token/types"
)

// TokenLedger is the token surface the API exposes.
type TokenLedger interface {
	Address() common.Address
	Metadata() tokentypes.Metadata
	BalanceOf(ctx context.Context, owner common.Address) (math.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (math.Int, error)
	Transfer(ctx context.Context, from, to common.Address, amount math.Int) error
	Approve(ctx context.Context, owner, spender common.Address, amount math.Int) error
}

// Server represents the API server
type Server struct {
	logger log.Logger
	router *gin.Engine
	config Config
	pool   *swapkeeper.Keeper
	tokens map[common.Address]TokenLedger
}

// Config holds server configuration
type Config struct {
	Address         string
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Address:         "127.0.0.1:1317",
		CORSOrigins:     []string{"http://localhost:3000"},
		RateLimitRPS:    50,
		RateLimitBurst:  100,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RequestTimeout:  5 * time.Second,
	}
}

// NewServer creates a new API server over the pool and its token ledgers.
func NewServer(logger log.Logger, cfg Config, pool *swapkeeper.Keeper, tokens ...TokenLedger) (*Server, error) {
	if pool == nil {
		return nil, errors.New("pool keeper is required")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %v rps burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	s := &Server{
		logger: logger.With("module", "api"),
		config: cfg,
		pool:   pool,
		tokens: make(map[common.Address]TokenLedger, len(tokens)),
	}
	for _, t := range tokens {
		s.tokens[t.Address()] = t
	}

	token0, token1 := pool.GetTokens(context.Background())
	for _, addr := range []common.Address{token0, token1} {
		if _, ok := s.tokens[addr]; !ok {
			return nil, fmt.Errorf("no ledger for pool token %s", addr.Hex())
		}
	}

	s.setupRouter()
	return s, nil
}

// setupRouter configures the Gin router with all routes and middleware
func (s *Server) setupRouter() {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Global middleware - ORDER MATTERS!
	s.router.Use(gin.Recovery())
	s.router.Use(SecurityHeadersMiddleware())
	s.router.Use(RequestSizeLimitMiddleware(MaxRequestSize))
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(RateLimitMiddleware(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(TimeoutMiddleware(s.config.RequestTimeout))

	s.router.GET("/health", s.healthCheck)

	s.registerRoutes()
}

// healthCheck returns server liveness
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"initialized": s.pool.IsInitialized(c.Request.Context()),
	})
}

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(s.router)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.config.Address,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// token resolves a :token path value given as a hex address or a symbol.
func (s *Server) token(ref string) (TokenLedger, error) {
	ref = strings.TrimSpace(ref)
	if common.IsHexAddress(ref) {
		if t, ok := s.tokens[common.HexToAddress(ref)]; ok {
			return t, nil
		}
	} else {
		for _, t := range s.tokens {
			if strings.EqualFold(t.Metadata().Symbol, ref) {
				return t, nil
			}
		}
	}
	return nil, tokentypes.ErrUnknownToken.Wrap(ref)
}

func tokenInfo(t TokenLedger) TokenInfo {
	meta := t.Metadata()
	return TokenInfo{
		Address:  t.Address().Hex(),
		Symbol:   meta.Symbol,
		Name:     meta.Name,
		Decimals: meta.Decimals,
	}
}

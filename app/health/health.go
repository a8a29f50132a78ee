// Package health provides health check functionality for the swap service.
//
// The checker monitors:
// - State database connectivity and latency
// - Pool state (initialization and liquidity)
// - Registered pool invariants
// - Tracing exporter status
//
// The health check system supports multiple endpoints:
// - /health - Basic liveness check
// - /health/ready - Readiness check for load balancers
// - /health/detailed - Comprehensive status including invariants
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/paw-chain/swap/x/swap/keeper"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// probeKey is read on every database check. It is never written.
var probeKey = []byte("health/probe")

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// PoolReader is the read side of the pool the checker reports on.
type PoolReader interface {
	IsInitialized(ctx context.Context) bool
	GetReserves(ctx context.Context) (math.Int, math.Int)
	GetTotalShares(ctx context.Context) math.Int
}

// TracingChecker reports whether the tracing exporter is usable.
type TracingChecker interface {
	HealthCheck() error
}

type route struct {
	name      string
	invariant keeper.Invariant
}

// Checker performs health checks on the service's components. It doubles as
// the invariant registry of the swap module.
type Checker struct {
	logger  log.Logger
	db      dbm.DB
	pool    PoolReader
	tracing TracingChecker
	version string

	maxResponseTime time.Duration

	routesMu sync.RWMutex
	routes   []route

	mu            sync.RWMutex
	lastCheck     time.Time
	cachedHealth  *HealthCheck
	cacheDuration time.Duration
}

// Config holds configuration for the health checker
type Config struct {
	// MaxResponseTime is the database latency past which it is reported degraded
	MaxResponseTime time.Duration

	// CacheDuration is how long to cache health check results
	CacheDuration time.Duration

	// Version is reported in every check
	Version string
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		MaxResponseTime: time.Second,
		CacheDuration:   5 * time.Second,
	}
}

// NewChecker creates a new health checker. tracing may be nil.
func NewChecker(logger log.Logger, cfg Config, db dbm.DB, pool PoolReader, tracing TracingChecker) (*Checker, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if cfg.MaxResponseTime <= 0 {
		return nil, fmt.Errorf("max response time must be positive")
	}

	return &Checker{
		logger:          logger.With("module", "health"),
		db:              db,
		pool:            pool,
		tracing:         tracing,
		version:         cfg.Version,
		maxResponseTime: cfg.MaxResponseTime,
		cacheDuration:   cfg.CacheDuration,
	}, nil
}

// RegisterRoute implements keeper.InvariantRegistry.
func (c *Checker) RegisterRoute(moduleName, routeName string, invariant keeper.Invariant) {
	c.routesMu.Lock()
	defer c.routesMu.Unlock()
	c.routes = append(c.routes, route{name: moduleName + "/" + routeName, invariant: invariant})
}

// Check performs a health check. Non-detailed results are cached.
func (c *Checker) Check(ctx context.Context, detailed bool) (*HealthCheck, error) {
	if !detailed && c.shouldUseCached() {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.cachedHealth, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Version:    c.version,
		Components: make(map[string]ComponentHealth),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	checks := []struct {
		name string
		fn   func(context.Context) ComponentHealth
	}{
		{"database", c.checkDatabase},
		{"pool", c.checkPool},
	}
	if c.tracing != nil {
		checks = append(checks, struct {
			name string
			fn   func(context.Context) ComponentHealth
		}{"tracing", c.checkTracing})
	}
	if detailed {
		checks = append(checks, struct {
			name string
			fn   func(context.Context) ComponentHealth
		}{"invariants", c.checkInvariants})
	}

	for _, check := range checks {
		wg.Add(1)
		go func(name string, fn func(context.Context) ComponentHealth) {
			defer wg.Done()
			result := fn(ctx)
			mu.Lock()
			health.Components[name] = result
			mu.Unlock()
		}(check.name, check.fn)
	}

	wg.Wait()

	health.Status = calculateOverallStatus(health.Components)

	if !detailed {
		c.mu.Lock()
		c.lastCheck = time.Now()
		c.cachedHealth = health
		c.mu.Unlock()
	}

	return health, nil
}

// checkDatabase verifies the state database answers reads
func (c *Checker) checkDatabase(_ context.Context) ComponentHealth {
	start := time.Now()
	_, err := c.db.Get(probeKey)
	duration := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("Database query failed: %v", err),
			Timestamp: time.Now(),
		}
	}

	componentStatus := StatusHealthy
	message := "Database is responsive"
	if duration > c.maxResponseTime {
		componentStatus = StatusDegraded
		message = "Database response time is degraded"
	}

	return ComponentHealth{
		Status:    componentStatus,
		Message:   message,
		Timestamp: time.Now(),
		Metrics: map[string]interface{}{
			"query_time_ms": duration.Milliseconds(),
		},
	}
}

// checkPool reports pool state. An unfunded pool is degraded, not unhealthy:
// the service is up but cannot quote.
func (c *Checker) checkPool(ctx context.Context) ComponentHealth {
	reserve0, reserve1 := c.pool.GetReserves(ctx)
	totalShares := c.pool.GetTotalShares(ctx)
	initialized := c.pool.IsInitialized(ctx)

	metrics := map[string]interface{}{
		"initialized":  initialized,
		"reserve0":     reserve0.String(),
		"reserve1":     reserve1.String(),
		"total_shares": totalShares.String(),
	}

	componentStatus := StatusHealthy
	message := "Pool is funded"
	switch {
	case !initialized:
		componentStatus = StatusDegraded
		message = "Pool has not been initialized"
	case totalShares.IsZero():
		componentStatus = StatusDegraded
		message = "Pool holds no liquidity"
	}

	return ComponentHealth{
		Status:    componentStatus,
		Message:   message,
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

// checkInvariants runs every registered invariant
func (c *Checker) checkInvariants(ctx context.Context) ComponentHealth {
	c.routesMu.RLock()
	routes := append([]route(nil), c.routes...)
	c.routesMu.RUnlock()

	results := make(map[string]string, len(routes))
	var broken []string
	for _, r := range routes {
		msg, isBroken := runInvariant(ctx, r.invariant)
		if isBroken {
			broken = append(broken, r.name)
			results[r.name] = "broken"
			c.logger.Error("invariant broken", "route", r.name, "report", msg)
			continue
		}
		results[r.name] = "ok"
	}
	sort.Strings(broken)

	metrics := map[string]interface{}{
		"invariants": results,
	}

	if len(broken) > 0 {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("Broken invariants: %v", broken),
			Timestamp: time.Now(),
			Metrics:   metrics,
		}
	}

	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   fmt.Sprintf("All %d invariants hold", len(routes)),
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

// runInvariant treats a panicking invariant as broken.
func runInvariant(ctx context.Context, inv keeper.Invariant) (msg string, broken bool) {
	defer func() {
		if r := recover(); r != nil {
			msg, broken = fmt.Sprintf("invariant panicked: %v", r), true
		}
	}()
	return inv(ctx)
}

func (c *Checker) checkTracing(_ context.Context) ComponentHealth {
	if err := c.tracing.HealthCheck(); err != nil {
		return ComponentHealth{
			Status:    StatusDegraded,
			Message:   fmt.Sprintf("Tracing unavailable: %v", err),
			Timestamp: time.Now(),
		}
	}
	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "Tracing is configured",
		Timestamp: time.Now(),
	}
}

// calculateOverallStatus determines the overall health status based on component statuses
func calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// shouldUseCached determines if cached health check results should be used
func (c *Checker) shouldUseCached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachedHealth == nil {
		return false
	}

	return time.Since(c.lastCheck) < c.cacheDuration
}

// RegisterRoutes registers health check endpoints on router
func (c *Checker) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", c.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", c.handleHealthReady).Methods(http.MethodGet)
	router.HandleFunc("/health/detailed", c.handleHealthDetailed).Methods(http.MethodGet)
}

// Handler returns the health endpoints with panic recovery.
func (c *Checker) Handler() http.Handler {
	router := mux.NewRouter()
	c.RegisterRoutes(router)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{c.logger}),
		handlers.PrintRecoveryStack(false),
	)(router)
}

type recoveryLogger struct {
	logger log.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("health handler panic", "panic", fmt.Sprint(v...))
}

// handleHealth handles the basic liveness check endpoint
func (c *Checker) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleHealthReady reports ready unless a component is unhealthy. A degraded
// service still takes traffic.
func (c *Checker) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, false)
}

// handleHealthDetailed handles the detailed health check endpoint
func (c *Checker) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	c.respond(w, r, true)
}

func (c *Checker) respond(w http.ResponseWriter, r *http.Request, detailed bool) {
	health, err := c.Check(r.Context(), detailed)
	if err != nil {
		c.logger.Error("Health check failed", "detailed", detailed, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	statusCode := http.StatusOK
	if health.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, health)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

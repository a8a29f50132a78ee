package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/swap/testutil/keeper"
	"github.com/paw-chain/swap/x/swap/keeper"
)

var alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")

type fakeTracing struct{ err error }

func (f fakeTracing) HealthCheck() error { return f.err }

type HealthCheckTestSuite struct {
	suite.Suite
	fixture *keepertest.SwapFixture
	checker *Checker
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

func (suite *HealthCheckTestSuite) SetupTest() {
	suite.fixture = keepertest.SwapKeeper(suite.T())

	cfg := DefaultConfig()
	cfg.Version = "test"
	checker, err := NewChecker(log.NewNopLogger(), cfg, suite.fixture.DB, suite.fixture.Keeper, nil)
	suite.Require().NoError(err)
	keeper.RegisterInvariants(checker, suite.fixture.Keeper)
	suite.checker = checker
}

func (suite *HealthCheckTestSuite) get(path string) (*httptest.ResponseRecorder, HealthCheck) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	suite.checker.Handler().ServeHTTP(w, req)

	var body HealthCheck
	suite.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	return w, body
}

func (suite *HealthCheckTestSuite) TestUninitializedPoolIsDegradedButReady() {
	w, body := suite.get("/health/ready")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().Equal(StatusDegraded, body.Status)
	suite.Require().Equal(StatusDegraded, body.Components["pool"].Status)
	suite.Require().Equal(StatusHealthy, body.Components["database"].Status)
	suite.Require().Equal("test", body.Version)
	_, ran := body.Components["invariants"]
	suite.Require().False(ran)
}

func (suite *HealthCheckTestSuite) TestFundedPoolIsHealthy() {
	suite.fixture.InitPool(suite.T(), alice, math.NewInt(1000), math.NewInt(1000))

	w, body := suite.get("/health/detailed")
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().Equal(StatusHealthy, body.Status)
	suite.Require().Equal(StatusHealthy, body.Components["invariants"].Status)
	suite.Require().Equal("All 4 invariants hold", body.Components["invariants"].Message)
	suite.Require().Equal("1000", body.Components["pool"].Metrics["reserve0"])
}

func (suite *HealthCheckTestSuite) TestBrokenInvariantIsUnhealthy() {
	f := suite.fixture
	f.InitPool(suite.T(), alice, math.NewInt(1000), math.NewInt(1000))
	suite.Require().NoError(f.Token0.Transfer(f.Ctx, f.Keeper.Address(), alice, math.NewInt(10)))

	w, body := suite.get("/health/detailed")
	suite.Require().Equal(http.StatusServiceUnavailable, w.Code)
	suite.Require().Equal(StatusUnhealthy, body.Status)
	suite.Require().Contains(body.Components["invariants"].Message, "swap/reserves-backed")

	// readiness does not run invariants
	w, _ = suite.get("/health/ready")
	suite.Require().Equal(http.StatusOK, w.Code)
}

func (suite *HealthCheckTestSuite) TestReadyIsCached() {
	first, err := suite.checker.Check(context.Background(), false)
	suite.Require().NoError(err)

	suite.fixture.InitPool(suite.T(), alice, math.NewInt(1000), math.NewInt(1000))

	second, err := suite.checker.Check(context.Background(), false)
	suite.Require().NoError(err)
	suite.Require().Same(first, second)

	detailed, err := suite.checker.Check(context.Background(), true)
	suite.Require().NoError(err)
	suite.Require().Equal(StatusHealthy, detailed.Components["pool"].Status)
}

func TestNewChecker(t *testing.T) {
	t.Parallel()

	f := keepertest.SwapKeeper(t)

	tests := []struct {
		name     string
		config   Config
		withDB   bool
		withPool bool
		errorMsg string
	}{
		{name: "valid config", config: DefaultConfig(), withDB: true, withPool: true},
		{name: "missing db", config: DefaultConfig(), withPool: true, errorMsg: "database is required"},
		{name: "missing pool", config: DefaultConfig(), withDB: true, errorMsg: "pool is required"},
		{name: "zero response time", config: Config{CacheDuration: time.Second}, withDB: true, withPool: true, errorMsg: "max response time"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var pool PoolReader
			if tt.withPool {
				pool = f.Keeper
			}
			db := f.DB
			if !tt.withDB {
				db = nil
			}

			checker, err := NewChecker(log.NewNopLogger(), tt.config, db, pool, nil)
			if tt.errorMsg != "" {
				require.ErrorContains(t, err, tt.errorMsg)
				require.Nil(t, checker)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.config.MaxResponseTime, checker.maxResponseTime)
		})
	}
}

func TestCalculateOverallStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		components map[string]ComponentHealth
		expected   Status
	}{
		{
			name: "all healthy",
			components: map[string]ComponentHealth{
				"database": {Status: StatusHealthy},
				"pool":     {Status: StatusHealthy},
			},
			expected: StatusHealthy,
		},
		{
			name: "one degraded",
			components: map[string]ComponentHealth{
				"database": {Status: StatusHealthy},
				"pool":     {Status: StatusDegraded},
			},
			expected: StatusDegraded,
		},
		{
			name: "unhealthy takes precedence over degraded",
			components: map[string]ComponentHealth{
				"database":   {Status: StatusDegraded},
				"invariants": {Status: StatusUnhealthy},
				"pool":       {Status: StatusHealthy},
			},
			expected: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, calculateOverallStatus(tt.components))
		})
	}
}

func TestTracingComponent(t *testing.T) {
	t.Parallel()

	f := keepertest.SwapKeeper(t)
	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), f.DB, f.Keeper, fakeTracing{err: errors.New("exporter down")})
	require.NoError(t, err)

	health, err := checker.Check(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, StatusDegraded, health.Components["tracing"].Status)
	require.Contains(t, health.Components["tracing"].Message, "exporter down")
}

func TestCheckHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	f := keepertest.SwapKeeper(t)
	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), f.DB, f.Keeper, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	checker.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRegisterRoutes(t *testing.T) {
	t.Parallel()

	f := keepertest.SwapKeeper(t)
	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), f.DB, f.Keeper, nil)
	require.NoError(t, err)

	router := mux.NewRouter()
	checker.RegisterRoutes(router)

	for _, route := range []string{"/health", "/health/ready", "/health/detailed"} {
		req := httptest.NewRequest(http.MethodGet, route, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "route %s", route)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	}

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPanickingInvariantIsBroken(t *testing.T) {
	t.Parallel()

	f := keepertest.SwapKeeper(t)
	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), f.DB, f.Keeper, nil)
	require.NoError(t, err)
	checker.RegisterRoute("test", "panics", func(context.Context) (string, bool) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	w := httptest.NewRecorder()
	checker.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "test/panics")
}

func TestConcurrentHealthChecks(t *testing.T) {
	t.Parallel()

	f := keepertest.SwapKeeper(t)
	cfg := DefaultConfig()
	cfg.CacheDuration = 10 * time.Millisecond
	checker, err := NewChecker(log.NewNopLogger(), cfg, f.DB, f.Keeper, nil)
	require.NoError(t, err)
	handler := checker.Handler()

	const numRequests = 10
	results := make(chan error, numRequests)
	for i := 0; i < numRequests; i++ {
		go func(i int) {
			path := "/health/ready"
			if i%2 == 0 {
				path = "/health/detailed"
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusOK {
				results <- fmt.Errorf("%s: unexpected status %d", path, w.Code)
				return
			}
			results <- nil
		}(i)
	}

	for i := 0; i < numRequests; i++ {
		require.NoError(t, <-results)
	}
}

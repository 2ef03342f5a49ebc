//go:build e2e

package e2e

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/api/handlers"
	"github.com/handrades/Luppa-PLC-sub003/internal/cache"
	"github.com/handrades/Luppa-PLC-sub003/internal/cache/redis"
	"github.com/handrades/Luppa-PLC-sub003/internal/cli/client"
	"github.com/handrades/Luppa-PLC-sub003/internal/database"
	"github.com/handrades/Luppa-PLC-sub003/internal/metrics"
	"github.com/handrades/Luppa-PLC-sub003/internal/repository"
	"github.com/handrades/Luppa-PLC-sub003/internal/server"
	"github.com/handrades/Luppa-PLC-sub003/internal/service"
	"github.com/handrades/Luppa-PLC-sub003/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	RedisC    *testutil.RedisContainer
	Pool      *pgxpool.Pool
	Redis     *redis.Store
	Gateway   *cache.Gateway
	Service   *service.SearchService
	Server    *httptest.Server
	Client    *client.APIClient
}

// SetupE2EEnv starts Postgres and Redis, applies migrations and serves the
// full router over httptest.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	redisC := testutil.NewRedisContainer(ctx, t)

	if err := database.Migrate(pgC.ConnectionString(), "file://../../migrations", zap.NewNop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: pgC.ConnectionString(), MaxConns: 4})
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	store, err := redis.NewStore(redis.Config{Addrs: []string{redisC.Addr()}})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	metrics.RegisterSearchMetrics()
	gateway := cache.NewGateway(store, 2*time.Second, metrics.SearchCacheTotal, zap.NewNop())
	svc := service.NewSearchService(repository.NewSearchRepository(pool), gateway, service.DefaultSearchServiceConfig(), zap.NewNop())

	srv := httptest.NewServer(server.NewRouter(server.RouterConfig{
		SearchHandler: handlers.NewSearchHandler(svc),
		Logger:        zap.NewNop(),
	}))

	return &E2ETestEnv{
		T:         t,
		Ctx:       ctx,
		PostgresC: pgC,
		RedisC:    redisC,
		Pool:      pool,
		Redis:     store,
		Gateway:   gateway,
		Service:   svc,
		Server:    srv,
		Client:    client.NewAPIClientWithConfig(srv.URL),
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Service != nil {
		e.Service.Wait()
	}
	if e.Redis != nil {
		e.Redis.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RedisC != nil {
		e.RedisC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// SeedCatalog inserts a small plant and refreshes the search view.
func (e *E2ETestEnv) SeedCatalog() {
	seeds := []testutil.PLCSeed{
		{Site: "Plant A", Cell: "Line 1", Equipment: "Press 1", Tag: "PLC-PRESS-01", Description: "Main hydraulic press controller", Make: "Siemens", Model: "S7-1500", IPAddress: "10.0.1.10", FirmwareVersion: "2.9"},
		{Site: "Plant A", Cell: "Line 1", Equipment: "Conveyor 1", Tag: "PLC-CONV-01", Description: "Infeed conveyor", Make: "Allen-Bradley", Model: "ControlLogix 5580", IPAddress: "10.0.1.11"},
		{Site: "Plant A", Cell: "Line 2", Equipment: "Robot Cell", Tag: "PLC-ROBOT-02", Description: "Robot cell safety controller", Make: "Siemens", Model: "S7-1200", IPAddress: "10.0.2.20"},
		{Site: "Plant B", Cell: "Packaging", Equipment: "Wrapper", Tag: "PLC-WRAP-01", Description: "Stretch wrapper", Make: "Omron", Model: "NX102"},
	}
	for _, s := range seeds {
		testutil.SeedPLC(e.Ctx, e.T, e.Pool, s)
	}
	if err := e.Service.RefreshSearchView(e.Ctx); err != nil {
		e.T.Fatalf("failed to refresh search view: %v", err)
	}
}

// SeedPLC inserts one more controller without refreshing the view.
func (e *E2ETestEnv) SeedPLC(site, cell, equipment, tag, mk string) string {
	return testutil.SeedPLC(e.Ctx, e.T, e.Pool, testutil.PLCSeed{
		Site:        site,
		Cell:        cell,
		Equipment:   equipment,
		Tag:         tag,
		Description: "Added after the initial refresh",
		Make:        mk,
		Model:       "CX5140",
	})
}

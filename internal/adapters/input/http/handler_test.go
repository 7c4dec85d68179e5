package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"perk-roulette/internal/adapters/output/memory"
	"perk-roulette/internal/application"
	"perk-roulette/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status Status          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func setupApp(t *testing.T, limiter fiber.Handler) *fiber.App {
	t.Helper()
	perks := []domain.Perk{
		{ID: "adrenaline", Title: "Adrenaline", Description: domain.PerkDescription{MainEffect: "Heals one state."}},
		{ID: "balanced_landing", Title: "Balanced Landing"},
		{ID: "dead_hard", Title: "Dead Hard"},
		{ID: "iron_will", Title: "Iron Will"},
		{ID: "lithe", Title: "Lithe"},
		{ID: "sprint_burst", Title: "Sprint Burst"},
	}
	catalog, err := domain.NewCatalog(perks)
	require.NoError(t, err)

	store := memory.NewMemoryConstraintStore()
	registry := application.NewSessionRegistry(store, catalog, time.Second)
	srv := application.NewRouletteService(catalog, store, registry, application.RouletteConfig{})

	app := fiber.New()
	New(srv).Register(app, limiter)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func decodeBuild(t *testing.T, env envelope) domain.BuildResult {
	t.Helper()
	var build domain.BuildResult
	require.NoError(t, json.Unmarshal(env.Data, &build))
	return build
}

func TestHTTPHandler_HealthCheck(t *testing.T) {
	app := setupApp(t, nil)

	code, env := do(t, app, fiber.MethodGet, "/health", nil)

	assert.Equal(t, fiber.StatusOK, code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "ok", health.Store)
	assert.Equal(t, 0, health.Sessions)
}

func TestHTTPHandler_RollAndBuild(t *testing.T) {
	app := setupApp(t, nil)

	code, env := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/roll", nil)
	require.Equal(t, fiber.StatusOK, code)
	rolled := decodeBuild(t, env)
	assert.Len(t, rolled.PerkIDs, 4)
	assert.Len(t, rolled.Titles, 4)

	code, env = do(t, app, fiber.MethodGet, "/v1/api/roulette/U1/build", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, rolled.PerkIDs, decodeBuild(t, env).PerkIDs)
}

func TestHTTPHandler_ReplaceAt(t *testing.T) {
	app := setupApp(t, nil)

	t.Run("without a build", func(t *testing.T) {
		code, _ := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/replace/0", nil)
		assert.Equal(t, fiber.StatusConflict, code)
	})

	t.Run("bad index", func(t *testing.T) {
		code, _ := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/replace/first", nil)
		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run("out of range", func(t *testing.T) {
		do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/roll", nil)
		code, _ := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/replace/4", nil)
		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run("replaces one slot", func(t *testing.T) {
		_, env := do(t, app, fiber.MethodGet, "/v1/api/roulette/U1/build", nil)
		before := decodeBuild(t, env)

		code, env := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/replace/2", nil)
		require.Equal(t, fiber.StatusOK, code)
		after := decodeBuild(t, env)
		assert.NotEqual(t, before.PerkIDs[2], after.PerkIDs[2])
		assert.Equal(t, before.PerkIDs[0], after.PerkIDs[0])
	})
}

func TestHTTPHandler_Blacklist(t *testing.T) {
	app := setupApp(t, nil)

	code, env := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/blacklist", BlacklistRequest{PerkID: "lithe"})
	require.Equal(t, fiber.StatusOK, code)
	var change domain.BlacklistChange
	require.NoError(t, json.Unmarshal(env.Data, &change))
	assert.True(t, change.Changed)
	assert.True(t, change.Listed)

	code, env = do(t, app, fiber.MethodGet, "/v1/api/roulette/U1/blacklist", nil)
	require.Equal(t, fiber.StatusOK, code)
	var titles TitlesResponse
	require.NoError(t, json.Unmarshal(env.Data, &titles))
	assert.Equal(t, []string{"Lithe"}, titles.Titles)

	code, env = do(t, app, fiber.MethodGet, "/v1/api/roulette/U1/whitelist", nil)
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &titles))
	assert.NotContains(t, titles.Titles, "Lithe")
	assert.Len(t, titles.Titles, 5)

	code, _ = do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/blacklist", BlacklistRequest{PerkID: "unknown"})
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/blacklist", BlacklistRequest{})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env = do(t, app, fiber.MethodDelete, "/v1/api/roulette/U1/blacklist/lithe", nil)
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &change))
	assert.True(t, change.Changed)
	assert.False(t, change.Listed)
}

func TestHTTPHandler_InsufficientCatalog(t *testing.T) {
	app := setupApp(t, nil)
	for _, id := range []string{"adrenaline", "balanced_landing", "dead_hard"} {
		code, _ := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/blacklist", BlacklistRequest{PerkID: id})
		require.Equal(t, fiber.StatusOK, code)
	}

	code, _ := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/roll", nil)

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}

func TestHTTPHandler_CustomBuild(t *testing.T) {
	app := setupApp(t, nil)

	t.Run("by ids", func(t *testing.T) {
		ids := []string{"lithe", "dead_hard", "adrenaline", "iron_will"}
		code, env := do(t, app, fiber.MethodPut, "/v1/api/roulette/U1/build", CustomBuildRequest{PerkIDs: ids})
		require.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, ids, decodeBuild(t, env).PerkIDs)
	})

	t.Run("by titles", func(t *testing.T) {
		titles := []string{"Lithe", "Dead Hard", "Adrenaline", "Sprint Burst"}
		code, env := do(t, app, fiber.MethodPut, "/v1/api/roulette/U1/build", CustomBuildRequest{Titles: titles})
		require.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, titles, decodeBuild(t, env).Titles)
	})

	t.Run("empty body", func(t *testing.T) {
		code, _ := do(t, app, fiber.MethodPut, "/v1/api/roulette/U1/build", CustomBuildRequest{})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run("wrong size", func(t *testing.T) {
		code, _ := do(t, app, fiber.MethodPut, "/v1/api/roulette/U1/build", CustomBuildRequest{PerkIDs: []string{"lithe"}})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})
}

func TestHTTPHandler_RegisterResult(t *testing.T) {
	app := setupApp(t, nil)
	won := true

	code, _ := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/result", ResultRequest{Won: &won})
	assert.Equal(t, fiber.StatusConflict, code)

	do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/roll", nil)
	code, env := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/result", ResultRequest{Won: &won})
	require.Equal(t, fiber.StatusOK, code)
	build := decodeBuild(t, env)
	assert.True(t, build.ResultClaimed)

	code, _ = do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/result", ResultRequest{Won: &won})
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/result", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env = do(t, app, fiber.MethodGet, "/v1/api/usage?user_id=U1&outcome=win", nil)
	require.Equal(t, fiber.StatusOK, code)
	var rows []domain.UsageRow
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Equal(t, int64(1), row.Wins)
		assert.Contains(t, build.PerkIDs, row.PerkID)
	}
}

func TestHTTPHandler_UsageValidation(t *testing.T) {
	app := setupApp(t, nil)

	code, _ := do(t, app, fiber.MethodGet, "/v1/api/usage?outcome=draw", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, fiber.MethodGet, "/v1/api/usage?period=decade", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, fiber.MethodGet, "/v1/api/usage?period=month&order=least&limit=5", nil)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestHTTPHandler_Perks(t *testing.T) {
	app := setupApp(t, nil)

	code, env := do(t, app, fiber.MethodGet, "/v1/api/perks", nil)
	require.Equal(t, fiber.StatusOK, code)
	var titles TitlesResponse
	require.NoError(t, json.Unmarshal(env.Data, &titles))
	assert.Equal(t, "Adrenaline", titles.Titles[0])
	assert.Len(t, titles.Titles, 6)

	code, env = do(t, app, fiber.MethodGet, "/v1/api/perks/adrenaline", nil)
	require.Equal(t, fiber.StatusOK, code)
	var help domain.PerkHelp
	require.NoError(t, json.Unmarshal(env.Data, &help))
	assert.Equal(t, "Adrenaline", help.Title)
	assert.Contains(t, help.Text, "Heals one state.")

	code, _ = do(t, app, fiber.MethodGet, "/v1/api/perks/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestHTTPHandler_LastMessageAndEndSession(t *testing.T) {
	app := setupApp(t, nil)

	code, _ := do(t, app, fiber.MethodPut, "/v1/api/roulette/U1/message", MessageRefRequest{Ref: "msg-9"})
	require.Equal(t, fiber.StatusOK, code)

	code, env := do(t, app, fiber.MethodGet, "/v1/api/roulette/U1/message", nil)
	require.Equal(t, fiber.StatusOK, code)
	var ref MessageRefResponse
	require.NoError(t, json.Unmarshal(env.Data, &ref))
	assert.Equal(t, "msg-9", ref.Ref)

	code, _ = do(t, app, fiber.MethodDelete, "/v1/api/roulette/U1", nil)
	require.Equal(t, fiber.StatusOK, code)

	_, env = do(t, app, fiber.MethodGet, "/health", nil)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, 0, health.Sessions)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	app := setupApp(t, limiter.Handler())

	for i := 0; i < 2; i++ {
		code, _ := do(t, app, fiber.MethodGet, "/v1/api/roulette/U1/blacklist", nil)
		require.Equal(t, fiber.StatusOK, code)
	}
	code, env := do(t, app, fiber.MethodGet, "/v1/api/roulette/U1/blacklist", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, code)
	assert.Equal(t, TooManyRequests.Code, env.Status.Code)

	code, _ = do(t, app, fiber.MethodGet, "/v1/api/perks", nil)
	assert.Equal(t, fiber.StatusOK, code)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrNotFound, fiber.StatusNotFound},
		{domain.ErrInvalidUser, fiber.StatusBadRequest},
		{domain.ErrAlreadyRegistered, fiber.StatusConflict},
		{domain.ErrSessionBusy, fiber.StatusConflict},
		{domain.ErrStaleBuild, fiber.StatusConflict},
		{domain.ErrInsufficientCatalog, fiber.StatusUnprocessableEntity},
		{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable},
		{assert.AnError, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, statusOf(tc.err).Code, tc.err.Error())
	}
	assert.Equal(t, []string{"Sorry, Storage is unavailable"}, statusOf(domain.ErrStoreUnavailable).Message)
}

func TestRateLimiter_SweepsIdleKeys(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	clock := time.Now()
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	for _, key := range []string{"U1", "U2", "U3"} {
		limiter.Allow(key)
	}
	require.Equal(t, 3, limiter.Len())

	clock = clock.Add(30 * time.Second)
	limiter.Allow("U1")
	require.Equal(t, 3, limiter.Len())

	clock = clock.Add(DefaultLimiterIdleTTL - 29*time.Second)
	limiter.Allow("U4")

	assert.Equal(t, 2, limiter.Len(), "U2 and U3 idle past the TTL should be dropped")
}

func TestRateLimiter_KeepsIdleKeysUntilRefilled(t *testing.T) {
	limiter := NewRateLimiter(0.0001, 1)
	clock := time.Now()
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	require.True(t, limiter.Allow("U1"))
	clock = clock.Add(DefaultLimiterIdleTTL + time.Second)
	limiter.Allow("U2")

	assert.Equal(t, 2, limiter.Len())
	assert.False(t, limiter.Allow("U1"), "an exhausted bucket must survive the sweep")
}

func TestHTTPHandler_RegisterResultForBuild(t *testing.T) {
	app := setupApp(t, nil)
	won := false

	_, env := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/roll", nil)
	rolled := decodeBuild(t, env)
	require.NotEmpty(t, rolled.BuildID)

	_, env = do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/replace/0", nil)
	replaced := decodeBuild(t, env)
	require.NotEqual(t, rolled.BuildID, replaced.BuildID)

	code, _ := do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/result", ResultRequest{Won: &won, BuildID: rolled.BuildID})
	assert.Equal(t, fiber.StatusConflict, code)

	code, _ = do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/result", ResultRequest{Won: &won, BuildID: replaced.BuildID, PerkIDs: replaced.PerkIDs})
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, env = do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/result", ResultRequest{Won: &won, BuildID: replaced.BuildID})
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, decodeBuild(t, env).ResultClaimed)
}

func TestHTTPHandler_EvictIdle(t *testing.T) {
	app := setupApp(t, nil)

	for _, path := range []string{"/v1/api/sessions", "/v1/api/sessions?idle=soon", "/v1/api/sessions?idle=-5m", "/v1/api/sessions?idle=0s"} {
		code, _ := do(t, app, fiber.MethodDelete, path, nil)
		assert.Equal(t, fiber.StatusBadRequest, code, path)
	}

	do(t, app, fiber.MethodPost, "/v1/api/roulette/U1/roll", nil)
	do(t, app, fiber.MethodPost, "/v1/api/roulette/U2/roll", nil)

	code, env := do(t, app, fiber.MethodDelete, "/v1/api/sessions?idle=1h", nil)
	require.Equal(t, fiber.StatusOK, code)
	var resp EvictIdleResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 0, resp.Evicted)

	time.Sleep(5 * time.Millisecond)
	code, env = do(t, app, fiber.MethodDelete, "/v1/api/sessions?idle=1ms", nil)
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.Evicted)

	_, env = do(t, app, fiber.MethodGet, "/health", nil)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, 0, health.Sessions)
}

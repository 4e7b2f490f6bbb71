package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8081, cfg.Server.GraphQLPort)
	assert.Equal(t, "", cfg.Typesense.URL)
	assert.Equal(t, "salons", cfg.Typesense.Collection)
	assert.InDelta(t, 0.3, cfg.Search.MinScore, 1e-9)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
	assert.Equal(t, 300, cfg.Search.CacheTTLSeconds)
	assert.Equal(t, 9, cfg.Booking.OpenHour)
	assert.Equal(t, 21, cfg.Booking.CloseHour)
	assert.Equal(t, 6, cfg.Recommend.DefaultLimit)
	assert.InDelta(t, 0.6, cfg.Recommend.HybridWeight, 1e-9)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "http://test-typesense:8108")
	t.Setenv("TYPESENSE_API_KEY", "test-key")
	t.Setenv("SEARCH_MIN_SCORE", "0.75")
	t.Setenv("RECOMMEND_HYBRID_WEIGHT", "0.4")
	t.Setenv("BOOKING_OPEN_HOUR", "10")
	t.Setenv("GRAPHQL_PORT", "9091")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://test-typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, "test-key", cfg.Typesense.APIKey)
	assert.InDelta(t, 0.75, cfg.Search.MinScore, 1e-9)
	assert.InDelta(t, 0.4, cfg.Recommend.HybridWeight, 1e-9)
	assert.Equal(t, 10, cfg.Booking.OpenHour)
	assert.Equal(t, 9091, cfg.Server.GraphQLPort)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("SEARCH_MIN_SCORE", "high")
	t.Setenv("SERVER_PORT", "eighty")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.3, cfg.Search.MinScore, 1e-9)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"hybrid weight above one", "RECOMMEND_HYBRID_WEIGHT", "1.5"},
		{"closing before opening", "BOOKING_CLOSE_HOUR", "8"},
		{"closing past midnight", "BOOKING_CLOSE_HOUR", "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "booksaloon", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=booksaloon sslmode=disable", c.DatabaseDSN())
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://booksaloon.app, https://admin.booksaloon.app,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://booksaloon.app", "https://admin.booksaloon.app"}, cfg.Server.AllowedOrigins)
}

func TestLoad_WarmQueries(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Search.WarmQueries)
	assert.Equal(t, 600, cfg.Search.WarmIntervalSeconds)

	t.Setenv("SEARCH_WARM_QUERIES", "haircut,spa")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"haircut", "spa"}, cfg.Search.WarmQueries)
}

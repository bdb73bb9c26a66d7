package main

import (
	"context"
	"testing"
	"time"

	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/config"
	"github.com/stretchr/testify/require"
)

func TestOpenStoreInMemory(t *testing.T) {
	ctx := context.Background()
	st, closeStore, err := openStore(ctx, &config.Config{})
	require.NoError(t, err)
	require.NotNil(t, closeStore)
	defer closeStore()

	counts, err := st.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, counts.Documents)
	require.Equal(t, 5, counts.Tutorials)

	admin, err := st.UserByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Empty(t, admin.Password)
}

func TestOpenStoreUnreachableMongoFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.MongoDB.URI = "mongodb://127.0.0.1:1"
	cfg.MongoDB.Database = "homelab"
	cfg.MongoDB.Timeout = 200 * time.Millisecond

	st, closeStore, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()

	docs, err := st.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 12)
}

package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/database"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongoTestDB returns a throwaway database, or skips when MONGODB_URI is unset.
func mongoTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping MongoDB repository tests")
	}
	client, err := database.ConnectMongo(context.Background(), uri, 5*time.Second)
	require.NoError(t, err)
	db := client.Database("repo_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestMongoRepoIDsAndUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewMongoRepo[content.Tutorial](mongoTestDB(t).Collection("tutorials"))

	a, err := r.Create(ctx, &content.Tutorial{ID: 42, Title: "Wireguard", Tags: []string{"vpn"}})
	require.NoError(t, err)
	require.Equal(t, 1, a.ID)
	b, err := r.Create(ctx, &content.Tutorial{Title: "Pi-hole"})
	require.NoError(t, err)
	require.Equal(t, 2, b.ID)

	ok, err := r.Delete(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, ok)
	c, err := r.Create(ctx, &content.Tutorial{Title: "Traefik"})
	require.NoError(t, err)
	require.Equal(t, 3, c.ID)

	updated, err := r.Update(ctx, a.ID, func(tu *content.Tutorial) {
		tu.ID = 99
		tu.Featured = 1
	})
	require.NoError(t, err)
	require.Equal(t, a.ID, updated.ID)
	require.Equal(t, []string{"vpn"}, updated.Tags)

	got, err := r.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Featured)

	_, err = r.Update(ctx, b.ID, func(tu *content.Tutorial) { tu.Title = "gone" })
	require.ErrorIs(t, err, ErrNotFound)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Wireguard", list[0].Title)
	require.Equal(t, "Traefik", list[1].Title)
}

func TestMongoRepoTruncateRestartsCounter(t *testing.T) {
	ctx := context.Background()
	r := NewMongoRepo[content.Service](mongoTestDB(t).Collection("services"))

	for _, name := range []string{"pfSense", "Proxmox"} {
		_, err := r.Create(ctx, &content.Service{Name: name})
		require.NoError(t, err)
	}
	require.NoError(t, r.Truncate(ctx))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	s, err := r.Create(ctx, &content.Service{Name: "TrueNAS"})
	require.NoError(t, err)
	require.Equal(t, 1, s.ID)
}

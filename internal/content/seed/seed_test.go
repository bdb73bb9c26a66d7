package seed

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixtures(t *testing.T) {
	fx, err := Default()
	require.NoError(t, err)
	require.Len(t, fx.Users, 1)
	require.Len(t, fx.Services, 3)
	require.Len(t, fx.Documents, 12)
	require.Len(t, fx.Tutorials, 5)
	require.Equal(t, 21, fx.Total())

	require.Equal(t, "admin", fx.Users[0].Username)
	require.Equal(t, content.RoleAdmin, fx.Users[0].Role)

	wg := fx.Tutorials[1]
	require.Equal(t, "Setting Up Wireguard VPN", wg.Title)
	require.Equal(t, []string{"VPN", "Security", "Networking"}, wg.Tags)
	require.Equal(t, 15, wg.ReadTime)
	require.Len(t, wg.CodeSnippets, 1)
	require.Equal(t, "bash", wg.CodeSnippets[0].Language)

	require.Equal(t, 1, fx.Tutorials[0].Featured)
	require.Equal(t, "2.7.0", fx.Services[0].Version)
	require.Equal(t, content.StatusOnline, fx.Services[0].Status)

	slugs := map[string]bool{}
	for _, d := range fx.Documents {
		require.False(t, slugs[d.Slug], "duplicate document slug %s", d.Slug)
		slugs[d.Slug] = true
		require.Zero(t, d.ID)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("documents:\n- title: x\n  colour: red\n"))
	require.Error(t, err)
}

func TestLoadEmptyInput(t *testing.T) {
	fx, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Zero(t, fx.Total())
}

func TestLoadAcceptsJSON(t *testing.T) {
	fx, err := Load(strings.NewReader(`{"services":[{"name":"Grafana","description":"dash","icon":"x","status":"online"}],"documents":[],"tutorials":[]}`))
	require.NoError(t, err)
	require.Len(t, fx.Services, 1)
	require.Equal(t, "Grafana", fx.Services[0].Name)
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	fx, err := Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, fx))

	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	back, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, fx.Documents, back.Documents)
	require.Equal(t, fx.Tutorials, back.Tutorials)
	require.Equal(t, fx.Services, back.Services)
}

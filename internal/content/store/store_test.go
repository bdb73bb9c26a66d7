package store

import (
	"context"
	"testing"
	"time"

	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/seed"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return New(MemoryRepos(), WithClock(clk.Now)), clk
}

func TestCreateThenGetReturnsEqualEntity(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore(t)

	d, err := s.CreateDocument(ctx, content.Document{Title: "VPN Setup", Content: "...", Category: "Security", Icon: "shield-alt", Slug: "vpn-setup"})
	require.NoError(t, err)
	require.Equal(t, clk.Now(), d.CreatedAt)
	require.Equal(t, clk.Now(), d.UpdatedAt)
	got, err := s.Document(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, d, got)

	tut, err := s.CreateTutorial(ctx, content.Tutorial{Title: "T", Slug: "t", Tags: []string{"a"}})
	require.NoError(t, err)
	gotTut, err := s.Tutorial(ctx, tut.ID)
	require.NoError(t, err)
	require.Equal(t, tut, gotTut)

	svc, err := s.CreateService(ctx, content.Service{Name: "Grafana", Status: content.StatusOnline})
	require.NoError(t, err)
	require.Equal(t, clk.Now(), svc.CreatedAt)
	gotSvc, err := s.Service(ctx, svc.ID)
	require.NoError(t, err)
	require.Equal(t, svc, gotSvc)

	u, err := s.CreateUser(ctx, content.User{Username: "Alice", Role: content.RoleUser})
	require.NoError(t, err)
	gotU, err := s.User(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u, gotU)
}

func TestIDsStrictlyIncreaseAndAreNotReused(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var last int
	for i := 0; i < 5; i++ {
		d, err := s.CreateDocument(ctx, content.Document{Title: "d"})
		require.NoError(t, err)
		require.Greater(t, d.ID, last)
		last = d.ID
		if i%2 == 0 {
			ok, err := s.DeleteDocument(ctx, d.ID)
			require.NoError(t, err)
			require.True(t, ok)
		}
	}
	d, err := s.CreateDocument(ctx, content.Document{Title: "after deletes"})
	require.NoError(t, err)
	require.Equal(t, 6, d.ID)
}

func TestBySlug(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.CreateDocument(ctx, content.Document{Title: "A", Slug: "a"})
	require.NoError(t, err)
	b, err := s.CreateDocument(ctx, content.Document{Title: "B", Slug: "b"})
	require.NoError(t, err)

	got, err := s.DocumentBySlug(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)

	_, err = s.DocumentBySlug(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.DocumentBySlug(ctx, "B")
	require.ErrorIs(t, err, ErrNotFound, "slug match is exact")

	tut, err := s.CreateTutorial(ctx, content.Tutorial{Title: "W", Slug: "wireguard-vpn-setup"})
	require.NoError(t, err)
	gotTut, err := s.TutorialBySlug(ctx, "wireguard-vpn-setup")
	require.NoError(t, err)
	require.Equal(t, tut.ID, gotTut.ID)
	_, err = s.TutorialBySlug(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentsByCategoryIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	for _, d := range []content.Document{
		{Title: "pfSense", Category: "Security"},
		{Title: "Docker", Category: "Docker Containers"},
		{Title: "VPN", Category: "SECURITY"},
	} {
		_, err := s.CreateDocument(ctx, d)
		require.NoError(t, err)
	}

	got, err := s.DocumentsByCategory(ctx, "security")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "pfSense", got[0].Title)
	require.Equal(t, "VPN", got[1].Title)

	none, err := s.DocumentsByCategory(ctx, "secur")
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestUpdatePreservesOmittedFields(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore(t)
	d, err := s.CreateDocument(ctx, content.Document{Title: "Old", Content: "body", Category: "Monitoring", Icon: "tachometer-alt", Slug: "old"})
	require.NoError(t, err)

	clk.Advance(time.Hour)
	title := "New"
	up, err := s.UpdateDocument(ctx, d.ID, content.DocumentPatch{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "New", up.Title)
	require.Equal(t, "body", up.Content)
	require.Equal(t, "Monitoring", up.Category)
	require.Equal(t, "tachometer-alt", up.Icon)
	require.Equal(t, "old", up.Slug)
	require.Equal(t, d.CreatedAt, up.CreatedAt)
	require.Equal(t, clk.Now(), up.UpdatedAt)

	got, err := s.Document(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, up, got)
}

func TestUpdateMissingMutatesNothing(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	d, err := s.CreateDocument(ctx, content.Document{Title: "keep"})
	require.NoError(t, err)

	title := "x"
	_, err = s.UpdateDocument(ctx, d.ID+1, content.DocumentPatch{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateTutorial(ctx, 1, content.TutorialPatch{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateService(ctx, 1, content.ServicePatch{Name: &title})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateUser(ctx, 1, content.UserPatch{Email: &title})
	require.ErrorIs(t, err, ErrNotFound)

	all, err := s.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "keep", all[0].Title)
}

func TestServiceUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore(t)
	svc, err := s.CreateService(ctx, content.Service{Name: "Grafana", Status: content.StatusOnline})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	status := content.StatusDegraded
	up, err := s.UpdateService(ctx, svc.ID, content.ServicePatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, content.StatusDegraded, up.Status)
	require.Equal(t, svc.CreatedAt, up.CreatedAt)
}

func TestDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	svc, err := s.CreateService(ctx, content.Service{Name: "x"})
	require.NoError(t, err)

	ok, err := s.DeleteService(ctx, svc.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = s.Service(ctx, svc.ID)
	require.ErrorIs(t, err, ErrNotFound)

	ok, err = s.DeleteService(ctx, svc.ID)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.DeleteTutorial(ctx, 12)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = s.DeleteUser(ctx, 12)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFeaturedTutorialsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	var ids []int
	for _, title := range []string{"a", "b", "c", "d"} {
		tut, err := s.CreateTutorial(ctx, content.Tutorial{Title: title})
		require.NoError(t, err)
		ids = append(ids, tut.ID)
	}
	one := 1
	// flag in reverse order; result must still follow insertion order
	for _, id := range []int{ids[3], ids[2], ids[0]} {
		_, err := s.UpdateTutorial(ctx, id, content.TutorialPatch{Featured: &one})
		require.NoError(t, err)
	}

	featured, err := s.FeaturedTutorials(ctx)
	require.NoError(t, err)
	titles := []string{}
	for _, tut := range featured {
		require.Equal(t, 1, tut.Featured)
		titles = append(titles, tut.Title)
	}
	require.Equal(t, []string{"a", "c", "d"}, titles)
}

func TestUserByUsernameIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	u, err := s.CreateUser(ctx, content.User{Username: "Admin", Password: "pw", Role: content.RoleAdmin})
	require.NoError(t, err)

	got, err := s.UserByUsername(ctx, "ADMIN")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.UserByUsername(ctx, "root")
	require.ErrorIs(t, err, ErrNotFound)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestSeedAndReset(t *testing.T) {
	ctx := context.Background()
	fx, err := seed.Default()
	require.NoError(t, err)

	s, err := NewMemory(ctx, fx)
	require.NoError(t, err)
	c, err := s.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, Counts{Documents: 12, Tutorials: 5, Services: 3, Users: 1}, c)

	doc, err := s.DocumentBySlug(ctx, "pfsense-configuration")
	require.NoError(t, err)
	require.Equal(t, 4, doc.ID)

	// mutate then reset: ids restart and the fixture set is back
	_, err = s.CreateDocument(ctx, content.Document{Title: "extra", Slug: "extra"})
	require.NoError(t, err)
	_, err = s.DeleteDocument(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))
	c, err = s.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, 12, c.Documents)
	first, err := s.Document(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "hardware-components", first.Slug)
	_, err = s.DocumentBySlug(ctx, "extra")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	fx := &seed.Fixtures{Services: []content.Service{{Name: "Grafana"}}}
	s, _ := newTestStore(t)

	seeded, err := s.SeedIfEmpty(ctx, fx)
	require.NoError(t, err)
	require.True(t, seeded)

	seeded, err = s.SeedIfEmpty(ctx, fx)
	require.NoError(t, err)
	require.False(t, seeded)

	list, err := s.Services(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestResetWithoutSeedLeavesStoreEmpty(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.CreateService(ctx, content.Service{Name: "x"})
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))
	c, err := s.Counts(ctx)
	require.NoError(t, err)
	require.Zero(t, c.Total())
}

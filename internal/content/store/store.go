// Package store is the content store: it owns the documents, tutorials,
// services and users collections and exposes lookups and CRUD on top of the
// generic repositories.
//
// Absence is reported with ErrNotFound and never as a panic. Create and
// Update stamp timestamps; everything else is passed through as given, the
// store trusts the caller for field presence and slug uniqueness.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/repository"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned by every lookup that misses.
var ErrNotFound = repository.ErrNotFound

// Repos bundles one repository per collection.
type Repos struct {
	Documents repository.Repository[content.Document]
	Tutorials repository.Repository[content.Tutorial]
	Services  repository.Repository[content.Service]
	Users     repository.Repository[content.User]
}

// MemoryRepos returns empty in-memory repositories.
func MemoryRepos() Repos {
	return Repos{
		Documents: repository.NewMemoryRepo[content.Document](),
		Tutorials: repository.NewMemoryRepo[content.Tutorial](),
		Services:  repository.NewMemoryRepo[content.Service](),
		Users:     repository.NewMemoryRepo[content.User](),
	}
}

// MongoRepos returns repositories backed by collections of db.
func MongoRepos(db *mongo.Database) Repos {
	return Repos{
		Documents: repository.NewMongoRepo[content.Document](db.Collection("documents")),
		Tutorials: repository.NewMongoRepo[content.Tutorial](db.Collection("tutorials")),
		Services:  repository.NewMongoRepo[content.Service](db.Collection("services")),
		Users:     repository.NewMongoRepo[content.User](db.Collection("users")),
	}
}

type Option func(*Store)

// WithClock replaces time.Now for timestamping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is constructed once per process and handed to the HTTP layer.
type Store struct {
	repos Repos
	now   func() time.Time

	mu       sync.Mutex
	fixtures *seed.Fixtures
}

func New(repos Repos, opts ...Option) *Store {
	s := &Store{repos: repos, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemory returns an in-memory store seeded with fx (nil leaves it empty).
func NewMemory(ctx context.Context, fx *seed.Fixtures, opts ...Option) (*Store, error) {
	s := New(MemoryRepos(), opts...)
	if fx == nil {
		return s, nil
	}
	if err := s.Seed(ctx, fx); err != nil {
		return nil, err
	}
	return s, nil
}

// Documents

func (s *Store) Documents(ctx context.Context) ([]*content.Document, error) {
	return s.repos.Documents.List(ctx)
}

func (s *Store) Document(ctx context.Context, id int) (*content.Document, error) {
	return s.repos.Documents.Get(ctx, id)
}

// DocumentBySlug returns the first document carrying slug (exact match).
func (s *Store) DocumentBySlug(ctx context.Context, slug string) (*content.Document, error) {
	docs, err := s.repos.Documents.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.Slug == slug {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

// DocumentsByCategory matches the category case-insensitively.
func (s *Store) DocumentsByCategory(ctx context.Context, category string) ([]*content.Document, error) {
	docs, err := s.repos.Documents.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*content.Document{}
	for _, d := range docs {
		if strings.EqualFold(d.Category, category) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) CreateDocument(ctx context.Context, d content.Document) (*content.Document, error) {
	now := s.now()
	d.CreatedAt, d.UpdatedAt = now, now
	return s.repos.Documents.Create(ctx, &d)
}

func (s *Store) UpdateDocument(ctx context.Context, id int, p content.DocumentPatch) (*content.Document, error) {
	now := s.now()
	return s.repos.Documents.Update(ctx, id, func(d *content.Document) {
		p.Apply(d)
		d.UpdatedAt = now
	})
}

func (s *Store) DeleteDocument(ctx context.Context, id int) (bool, error) {
	return s.repos.Documents.Delete(ctx, id)
}

// Tutorials

func (s *Store) Tutorials(ctx context.Context) ([]*content.Tutorial, error) {
	return s.repos.Tutorials.List(ctx)
}

func (s *Store) Tutorial(ctx context.Context, id int) (*content.Tutorial, error) {
	return s.repos.Tutorials.Get(ctx, id)
}

func (s *Store) TutorialBySlug(ctx context.Context, slug string) (*content.Tutorial, error) {
	list, err := s.repos.Tutorials.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// FeaturedTutorials returns tutorials with featured == 1 in insertion order.
func (s *Store) FeaturedTutorials(ctx context.Context) ([]*content.Tutorial, error) {
	list, err := s.repos.Tutorials.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*content.Tutorial{}
	for _, t := range list {
		if t.IsFeatured() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CreateTutorial(ctx context.Context, t content.Tutorial) (*content.Tutorial, error) {
	now := s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	return s.repos.Tutorials.Create(ctx, &t)
}

func (s *Store) UpdateTutorial(ctx context.Context, id int, p content.TutorialPatch) (*content.Tutorial, error) {
	now := s.now()
	return s.repos.Tutorials.Update(ctx, id, func(t *content.Tutorial) {
		p.Apply(t)
		t.UpdatedAt = now
	})
}

func (s *Store) DeleteTutorial(ctx context.Context, id int) (bool, error) {
	return s.repos.Tutorials.Delete(ctx, id)
}

// Services

func (s *Store) Services(ctx context.Context) ([]*content.Service, error) {
	return s.repos.Services.List(ctx)
}

func (s *Store) Service(ctx context.Context, id int) (*content.Service, error) {
	return s.repos.Services.Get(ctx, id)
}

func (s *Store) CreateService(ctx context.Context, svc content.Service) (*content.Service, error) {
	svc.CreatedAt = s.now()
	return s.repos.Services.Create(ctx, &svc)
}

// UpdateService merges p; services carry no updatedAt.
func (s *Store) UpdateService(ctx context.Context, id int, p content.ServicePatch) (*content.Service, error) {
	return s.repos.Services.Update(ctx, id, p.Apply)
}

func (s *Store) DeleteService(ctx context.Context, id int) (bool, error) {
	return s.repos.Services.Delete(ctx, id)
}

// Users

func (s *Store) Users(ctx context.Context) ([]*content.User, error) {
	return s.repos.Users.List(ctx)
}

func (s *Store) User(ctx context.Context, id int) (*content.User, error) {
	return s.repos.Users.Get(ctx, id)
}

// UserByUsername matches the username case-insensitively.
func (s *Store) UserByUsername(ctx context.Context, username string) (*content.User, error) {
	list, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, u content.User) (*content.User, error) {
	u.CreatedAt = s.now()
	return s.repos.Users.Create(ctx, &u)
}

func (s *Store) UpdateUser(ctx context.Context, id int, p content.UserPatch) (*content.User, error) {
	return s.repos.Users.Update(ctx, id, p.Apply)
}

func (s *Store) DeleteUser(ctx context.Context, id int) (bool, error) {
	return s.repos.Users.Delete(ctx, id)
}

// Seeding

// Seed inserts every fixture record through the regular create path and
// remembers fx for Reset.
func (s *Store) Seed(ctx context.Context, fx *seed.Fixtures) error {
	s.mu.Lock()
	s.fixtures = fx
	s.mu.Unlock()

	for _, u := range fx.Users {
		if _, err := s.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
	}
	for _, svc := range fx.Services {
		if _, err := s.CreateService(ctx, svc); err != nil {
			return fmt.Errorf("seed service %q: %w", svc.Name, err)
		}
	}
	for _, d := range fx.Documents {
		if _, err := s.CreateDocument(ctx, d); err != nil {
			return fmt.Errorf("seed document %q: %w", d.Slug, err)
		}
	}
	for _, t := range fx.Tutorials {
		if _, err := s.CreateTutorial(ctx, t); err != nil {
			return fmt.Errorf("seed tutorial %q: %w", t.Slug, err)
		}
	}
	return nil
}

// SeedIfEmpty seeds only when every collection is empty, which is what a
// persistent backend wants on restart. It reports whether seeding happened.
func (s *Store) SeedIfEmpty(ctx context.Context, fx *seed.Fixtures) (bool, error) {
	c, err := s.Counts(ctx)
	if err != nil {
		return false, err
	}
	if c.Total() > 0 {
		s.mu.Lock()
		s.fixtures = fx
		s.mu.Unlock()
		return false, nil
	}
	return true, s.Seed(ctx, fx)
}

// Reset empties every collection, restarts the id counters and re-applies
// the fixtures from the last Seed call (if any).
func (s *Store) Reset(ctx context.Context) error {
	err := errors.Join(
		s.repos.Documents.Truncate(ctx),
		s.repos.Tutorials.Truncate(ctx),
		s.repos.Services.Truncate(ctx),
		s.repos.Users.Truncate(ctx),
	)
	if err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	s.mu.Lock()
	fx := s.fixtures
	s.mu.Unlock()
	if fx == nil {
		return nil
	}
	return s.Seed(ctx, fx)
}

// Counts is the size of each collection.
type Counts struct {
	Documents int `json:"documents"`
	Tutorials int `json:"tutorials"`
	Services  int `json:"services"`
	Users     int `json:"users"`
}

func (c Counts) Total() int { return c.Documents + c.Tutorials + c.Services + c.Users }

func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	docs, err := s.repos.Documents.List(ctx)
	if err != nil {
		return c, err
	}
	tuts, err := s.repos.Tutorials.List(ctx)
	if err != nil {
		return c, err
	}
	svcs, err := s.repos.Services.List(ctx)
	if err != nil {
		return c, err
	}
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return c, err
	}
	c.Documents, c.Tutorials, c.Services, c.Users = len(docs), len(tuts), len(svcs), len(users)
	return c, nil
}

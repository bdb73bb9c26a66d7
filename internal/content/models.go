package content

import (
	"slices"
	"time"
)

// Document is a long-form documentation page grouped by category.
// Slug is expected to be unique across documents; the store does not enforce it.
type Document struct {
	ID        int       `json:"id" bson:"_id" yaml:"id,omitempty"`
	Title     string    `json:"title" bson:"title" yaml:"title"`
	Content   string    `json:"content" bson:"content" yaml:"content"`
	Category  string    `json:"category" bson:"category" yaml:"category"`
	Icon      string    `json:"icon" bson:"icon" yaml:"icon"`
	Slug      string    `json:"slug" bson:"slug" yaml:"slug"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt,omitempty"`
}

// CodeSnippet is a single example attached to a tutorial.
type CodeSnippet struct {
	Language string `json:"language" bson:"language" yaml:"language"`
	Code     string `json:"code" bson:"code" yaml:"code"`
}

// Tutorial is a step-by-step guide. Featured is a 0/1 flag used for
// promoted display, not a ranking.
type Tutorial struct {
	ID            int           `json:"id" bson:"_id" yaml:"id,omitempty"`
	Title         string        `json:"title" bson:"title" yaml:"title"`
	Summary       string        `json:"summary" bson:"summary" yaml:"summary"`
	Content       string        `json:"content" bson:"content" yaml:"content"`
	Prerequisites []string      `json:"prerequisites,omitempty" bson:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	CodeSnippets  []CodeSnippet `json:"codeSnippets,omitempty" bson:"codeSnippets,omitempty" yaml:"codeSnippets,omitempty"`
	Tags          []string      `json:"tags,omitempty" bson:"tags,omitempty" yaml:"tags,omitempty"`
	ReadTime      int           `json:"readTime,omitempty" bson:"readTime,omitempty" yaml:"readTime,omitempty"`
	Featured      int           `json:"featured" bson:"featured" yaml:"featured"`
	Slug          string        `json:"slug" bson:"slug" yaml:"slug"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt,omitempty"`
}

// IsFeatured reports whether the featured flag is set.
func (t *Tutorial) IsFeatured() bool { return t.Featured == 1 }

// Service status values. The set is open: unknown strings are stored as given.
const (
	StatusOnline      = "online"
	StatusOffline     = "offline"
	StatusMaintenance = "maintenance"
	StatusDegraded    = "degraded"
	StatusUnknown     = "unknown"
)

// Service is a homelab service card.
type Service struct {
	ID          int       `json:"id" bson:"_id" yaml:"id,omitempty"`
	Name        string    `json:"name" bson:"name" yaml:"name"`
	Description string    `json:"description" bson:"description" yaml:"description"`
	Icon        string    `json:"icon" bson:"icon" yaml:"icon"`
	Status      string    `json:"status" bson:"status" yaml:"status"`
	Version     string    `json:"version,omitempty" bson:"version,omitempty" yaml:"version,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty" bson:"ipAddress,omitempty" yaml:"ipAddress,omitempty"`
	Platform    string    `json:"platform,omitempty" bson:"platform,omitempty" yaml:"platform,omitempty"`
	ConfigLink  string    `json:"configLink,omitempty" bson:"configLink,omitempty" yaml:"configLink,omitempty"`
	AdminLink   string    `json:"adminLink,omitempty" bson:"adminLink,omitempty" yaml:"adminLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" yaml:"createdAt,omitempty"`
}

// User is an account able to sign in to the admin API.
// Password is opaque to the store: either a bcrypt hash or a legacy clear value.
type User struct {
	ID        int       `json:"id" bson:"_id" yaml:"id,omitempty"`
	Username  string    `json:"username" bson:"username" yaml:"username"`
	Password  string    `json:"-" bson:"password" yaml:"password"`
	Email     string    `json:"email" bson:"email" yaml:"email"`
	Role      string    `json:"role" bson:"role" yaml:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"createdAt,omitempty"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// The methods below let the generic repositories assign and read ids.

func (d *Document) GetID() int   { return d.ID }
func (d *Document) SetID(id int) { d.ID = id }
func (t *Tutorial) GetID() int   { return t.ID }
func (t *Tutorial) SetID(id int) { t.ID = id }
func (s *Service) GetID() int    { return s.ID }
func (s *Service) SetID(id int)  { s.ID = id }
func (u *User) GetID() int       { return u.ID }
func (u *User) SetID(id int)     { u.ID = id }

// Clone returns a copy sharing no slices with t.
func (t *Tutorial) Clone() *Tutorial {
	c := *t
	c.Prerequisites = slices.Clone(t.Prerequisites)
	c.CodeSnippets = slices.Clone(t.CodeSnippets)
	c.Tags = slices.Clone(t.Tags)
	return &c
}

func (d *Document) Clone() *Document { c := *d; return &c }
func (s *Service) Clone() *Service   { c := *s; return &c }
func (u *User) Clone() *User         { c := *u; return &c }

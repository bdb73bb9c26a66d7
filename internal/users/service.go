package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// Callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Lookup is the part of the content store the service reads from.
type Lookup interface {
	User(ctx context.Context, id int) (*content.User, error)
	UserByUsername(ctx context.Context, username string) (*content.User, error)
}

// Service encapsulates user-related business logic
type Service struct {
	repo Lookup
}

func NewService(r Lookup) *Service {
	return &Service{repo: r}
}

// Authenticate checks username and password against the stored account.
// Stored passwords are bcrypt hashes; clear values written by older
// deployments are still compared in constant time. An empty stored password
// never matches.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*content.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !passwordMatches(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID returns the user or store.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int) (*content.User, error) {
	return s.repo.User(ctx, id)
}

// HashPassword returns a bcrypt hash suitable for User.Password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// SecureSeedUsers prepares fixture accounts before they are seeded. Admin
// accounts get adminPassword, bcrypt-hashed; when adminPassword is empty a
// clear-text admin password is blanked, which disables that login. Other
// clear-text passwords are hashed. It returns the usernames whose login was
// disabled.
func SecureSeedUsers(list []content.User, adminPassword string) ([]string, error) {
	var disabled []string
	for i := range list {
		u := &list[i]
		switch {
		case u.Role == content.RoleAdmin && adminPassword != "":
			h, err := HashPassword(adminPassword)
			if err != nil {
				return nil, err
			}
			u.Password = h
		case u.Password == "" || isBcrypt(u.Password):
		case u.Role == content.RoleAdmin:
			u.Password = ""
			disabled = append(disabled, u.Username)
		default:
			h, err := HashPassword(u.Password)
			if err != nil {
				return nil, err
			}
			u.Password = h
		}
	}
	return disabled, nil
}

func passwordMatches(stored, given string) bool {
	if stored == "" {
		return false
	}
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

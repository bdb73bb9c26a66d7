package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/config"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/middleware"
)

// GenerateAccessToken creates a signed JWT access token for the user
func GenerateAccessToken(cfg config.JWTConfig, u *content.User, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.Itoa(u.ID),
		"username": u.Username,
		"role":     u.Role,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.Secret))
}

// Verifier validates HS256 access tokens issued by GenerateAccessToken.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(cfg config.JWTConfig) *Verifier {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Verifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

func (v *Verifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	tok, err := v.parser.Parse(raw, func(*jwt.Token) (interface{}, error) { return v.secret, nil })
	if err != nil {
		return nil, err
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token claims")
	}
	return verified(mc), nil
}

type verified jwt.MapClaims

// Claims decodes the claim set into v through a JSON round-trip, the same
// way an OIDC ID token exposes its claims.
func (t verified) Claims(v interface{}) error {
	b, err := json.Marshal(map[string]interface{}(t))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Expiry returns the remaining lifetime of an already verified token.
// Used to size blacklist entries on logout.
func Expiry(claims map[string]interface{}) (time.Duration, error) {
	exp, ok := claims["exp"].(float64)
	if !ok {
		return 0, fmt.Errorf("exp claim missing")
	}
	return time.Until(time.Unix(int64(exp), 0)), nil
}

// UserID extracts the numeric subject.
func UserID(claims map[string]interface{}) (int, error) {
	sub, _ := claims["sub"].(string)
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, fmt.Errorf("invalid sub claim %q", sub)
	}
	return id, nil
}

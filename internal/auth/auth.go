package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/transfers/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Permission string

const (
	PermBooking    Permission = "booking"
	PermDrivers    Permission = "drivers"
	PermVehicles   Permission = "vehicles"
	PermRoutes     Permission = "routes"
	PermAdminUsers Permission = "adminUsers"
)

const (
	APIKeyHeader = "Api-Key"
	principalKey = "principal"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Principal is the caller behind a request. Public callers come from the
// booking widget and only carry the API key.
type Principal struct {
	Subject     string
	Superuser   bool
	Permissions []string
	Public      bool
}

func (p Principal) Has(perm Permission) bool {
	if p.Superuser {
		return true
	}
	return slices.Contains(p.Permissions, string(perm))
}

type Claims struct {
	IsSuperuser bool     `json:"is_superuser"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Authorizer checks staff bearer tokens and the public API key. With no JWT
// secret configured every caller is treated as a superuser, which is only
// meant for local runs.
type Authorizer struct {
	secret []byte
	apiKey string
}

func NewAuthorizer(cfg config.AuthConfig) *Authorizer {
	return &Authorizer{secret: []byte(cfg.JWTSecret), apiKey: cfg.APIKey}
}

func (a *Authorizer) Enabled() bool {
	return len(a.secret) > 0
}

func (a *Authorizer) IssueToken(subject string, superuser bool, permissions []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		IsSuperuser: superuser,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Authenticate resolves the staff principal from the Authorization header.
func (a *Authorizer) Authenticate(r *http.Request) (*Principal, error) {
	if !a.Enabled() {
		return &Principal{Subject: "anonymous", Superuser: true}, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingCredentials
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrInvalidToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return a.secret, nil
	}, jwt.WithLeeway(5*time.Second))
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Principal{Subject: claims.Subject, Superuser: claims.IsSuperuser, Permissions: claims.Permissions}, nil
}

func (a *Authorizer) validAPIKey(r *http.Request) bool {
	if a.apiKey == "" {
		return !a.Enabled()
	}
	key := r.Header.Get(APIKeyHeader)
	return key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(a.apiKey)) == 1
}

// Require lets through staff holding perm.
func (a *Authorizer) Require(perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.Authenticate(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if !p.Has(perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing permission " + string(perm)})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireAPIKeyOr lets through the public widget with a valid API key, or
// staff holding perm.
func (a *Authorizer) RequireAPIKeyOr(perm Permission) gin.HandlerFunc {
	staff := a.Require(perm)
	return func(c *gin.Context) {
		if a.validAPIKey(c.Request) {
			c.Set(principalKey, &Principal{Subject: "public", Public: true})
			c.Next()
			return
		}
		staff(c)
	}
}

func FromContext(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

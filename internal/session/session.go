// Package session issues and reads the signed tokens that carry the
// identity provider's User through the API.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/illegalcall/codecraft/internal/models"
)

const (
	// CookieName is the cookie holding the session token for browser clients.
	CookieName = "session"

	userLocalsKey = "session_user"
)

var ErrNoSession = errors.New("no session")

// Claims is the JWT body. The User fields are a read-only snapshot taken at login.
type Claims struct {
	Email            string `json:"email"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Plan             string `json:"plan"`
	Role             string `json:"role,omitempty"`
	GenerationsUsed  int    `json:"ai_generations_used"`
	GenerationsLimit int    `json:"ai_generations_limit"`
	jwt.RegisteredClaims
}

func (c *Claims) User() models.User {
	return models.User{
		ID:               c.Subject,
		Email:            c.Email,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Plan:             c.Plan,
		Role:             c.Role,
		GenerationsUsed:  c.GenerationsUsed,
		GenerationsLimit: c.GenerationsLimit,
	}
}

type Manager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewManager(secret string, expiration time.Duration) *Manager {
	return &Manager{secret: []byte(secret), expiration: expiration, now: time.Now}
}

// Issue signs an HS256 token for user.
func (m *Manager) Issue(user models.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.expiration)
	claims := &Claims{
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Plan:             user.PlanName(),
		Role:             user.Role,
		GenerationsUsed:  user.GenerationsUsed,
		GenerationsLimit: user.GenerationsLimit,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies the signature and expiry of raw.
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	return claims, nil
}

// TokenFromRequest returns the bearer token or, failing that, the session cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return c.Cookies(CookieName)
}

// Attach reads the already verified token of the request and stores its User
// in the request locals. It is used as the JWT middleware's success handler.
func Attach(c *fiber.Ctx) error {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(TokenFromRequest(c), claims); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	c.Locals(userLocalsKey, claims.User())
	return c.Next()
}

// UserFromCtx returns the User attached by Attach.
func UserFromCtx(c *fiber.Ctx) (models.User, error) {
	user, ok := c.Locals(userLocalsKey).(models.User)
	if !ok || user.ID == "" {
		return models.User{}, ErrNoSession
	}
	return user, nil
}

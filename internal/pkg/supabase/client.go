package supabase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/illegalcall/codecraft/internal/models"
)

// ErrInvalidCredentials is returned when the provider rejects the email/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Client authenticates users against Supabase Auth (GoTrue). Plan, role and
// generation quota are read from the user's app_metadata; names from user_metadata.
type Client struct {
	auth   gotrue.Client
	logger *slog.Logger
}

// extractProjectRef extracts just the project reference ID from a Supabase URL
// From: akrqbuajqkirdekonpzy.supabase.co
// To: akrqbuajqkirdekonpzy
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	parts := strings.Split(url, ".")
	return parts[0]
}

// NewClient initializes the Supabase authentication client and checks that
// the project answers.
func NewClient(supabaseURL, supabaseKey string, logger *slog.Logger) (*Client, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	projectRef := extractProjectRef(supabaseURL)
	logger.Info("Initializing Supabase client", "project_ref", projectRef)

	auth := gotrue.New(projectRef, supabaseKey)
	if _, err := auth.GetSettings(); err != nil {
		return nil, fmt.Errorf("failed to connect to Supabase: %w", err)
	}

	logger.Info("Supabase connection successful")
	return &Client{auth: auth, logger: logger}, nil
}

// Authenticate signs in with email and password and returns the provider's user.
func (c *Client) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	res, err := c.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		if isCredentialError(err) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("authentication failed: %w", err)
	}
	if res == nil || res.AccessToken == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user := userFromSupabase(res.User)
	c.logger.Info("Authentication result", "email", email, "user_id", user.ID, "plan", user.Plan)
	return user, nil
}

func isCredentialError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid_grant") || strings.Contains(msg, "invalid login credentials")
}

func userFromSupabase(u types.User) models.User {
	user := models.User{
		ID:               u.ID.String(),
		Email:            u.Email,
		FirstName:        metaString(u.UserMetadata, "first_name"),
		LastName:         metaString(u.UserMetadata, "last_name"),
		Plan:             metaString(u.AppMetadata, "plan"),
		Role:             metaString(u.AppMetadata, "role"),
		GenerationsUsed:  metaInt(u.AppMetadata, "ai_generations_used"),
		GenerationsLimit: metaInt(u.AppMetadata, "ai_generations_limit"),
	}
	if user.Plan == "" {
		user.Plan = models.PlanFree
	}
	return user
}

func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]interface{}, key string) int {
	switch v := meta[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

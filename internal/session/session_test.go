package session

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codecraft/internal/models"
)

var testUser = models.User{
	ID:               "5b1c1f8e-0000-4000-8000-000000000001",
	Email:            "ada@example.com",
	FirstName:        "Ada",
	Plan:             models.PlanFree,
	GenerationsUsed:  3,
	GenerationsLimit: 10,
}

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, expiresAt, err := m.Issue(testUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, testUser, claims.User())
}

func TestManager_ParseRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, _, err := m.Issue(testUser)
	require.NoError(t, err)

	_, err = NewManager("other-secret", time.Hour).Parse(token)
	assert.Error(t, err, "signature from another secret")

	expired := NewManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(testUser)
	require.NoError(t, err)
	_, err = m.Parse(old)
	assert.Error(t, err, "expired token")
}

func TestAttachAndUserFromCtx(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, _, err := m.Issue(testUser)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", Attach, func(c *fiber.Ctx) error {
		user, err := UserFromCtx(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(user)
	})

	tests := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{name: "bearer header", header: "Bearer " + token, status: fiber.StatusOK},
		{name: "session cookie", cookie: token, status: fiber.StatusOK},
		{name: "garbage", header: "Bearer nope", status: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", CookieName+"="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

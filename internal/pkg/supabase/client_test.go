package supabase

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/illegalcall/codecraft/internal/models"
)

func TestExtractProjectRef(t *testing.T) {
	assert.Equal(t, "akrqbuajqkirdekonpzy", extractProjectRef("https://akrqbuajqkirdekonpzy.supabase.co"))
	assert.Equal(t, "abc", extractProjectRef("abc.supabase.co"))
}

func TestUserFromSupabase(t *testing.T) {
	id := uuid.New()
	user := userFromSupabase(types.User{
		ID:    id,
		Email: "ada@example.com",
		UserMetadata: map[string]interface{}{
			"first_name": "Ada",
			"last_name":  "Lovelace",
		},
		AppMetadata: map[string]interface{}{
			"plan":                 "pro",
			"role":                 "admin",
			"ai_generations_used":  float64(12),
			"ai_generations_limit": float64(500),
		},
	})

	assert.Equal(t, models.User{
		ID:               id.String(),
		Email:            "ada@example.com",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Plan:             models.PlanPro,
		Role:             models.RoleAdmin,
		GenerationsUsed:  12,
		GenerationsLimit: 500,
	}, user)
}

func TestUserFromSupabase_Defaults(t *testing.T) {
	user := userFromSupabase(types.User{ID: uuid.New(), Email: "bob@example.com"})
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.Zero(t, user.GenerationsLimit)
	assert.Equal(t, models.DefaultGenerationsLimit, user.Limit())
}

func TestIsCredentialError(t *testing.T) {
	assert.True(t, isCredentialError(errors.New(`response status code 400: {"error":"invalid_grant","error_description":"Invalid login credentials"}`)))
	assert.False(t, isCredentialError(errors.New("dial tcp: connection refused")))
}

func TestNewClient_RequiresSettings(t *testing.T) {
	_, err := NewClient("", "", nil)
	assert.Error(t, err)
}

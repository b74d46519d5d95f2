package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     GenerateRequest
		missing []string
	}{
		{
			name: "complete without template",
			req:  GenerateRequest{ProjectName: "Demo", Framework: "react", Prompt: "Create a button"},
		},
		{
			name:    "blank prompt",
			req:     GenerateRequest{ProjectName: "Demo", Framework: "react", Prompt: "   "},
			missing: []string{"prompt"},
		},
		{
			name:    "everything missing",
			req:     GenerateRequest{Template: "custom"},
			missing: []string{"projectName", "framework", "prompt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			if assert.True(t, errors.As(err, &verr)) {
				assert.Equal(t, tt.missing, verr.Fields)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "Username is required", AuthCheckRequest{}.Validate().Error())
	assert.Equal(t, "Prompt is required", CompletionRequest{}.Validate().Error())
	assert.Equal(t, "missing required fields: name, framework", CreateProjectRequest{}.Validate().Error())
	assert.NoError(t, AuthCheckRequest{Username: "ada"}.Validate())
	assert.NoError(t, AuthCheckRequest{Username: "   "}.Validate())
}

func TestUser_Remaining(t *testing.T) {
	assert.Equal(t, 50, User{}.Remaining(), "unset limit defaults to 50")
	assert.Equal(t, 7, User{GenerationsUsed: 3, GenerationsLimit: 10}.Remaining())
	assert.Equal(t, 0, User{GenerationsUsed: 12, GenerationsLimit: 10}.Remaining())
	assert.Equal(t, PlanFree, User{}.PlanName())
	assert.True(t, User{Role: RoleAdmin}.IsAdmin())
}

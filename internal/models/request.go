package models

import (
	"fmt"
	"strings"
)

// ValidationError reports required fields that were missing or blank.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// require collects the names of blank fields, in order.
func require(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}

type CompletionRequest struct {
	Prompt string `json:"prompt"`
}

func (r CompletionRequest) Validate() error {
	if missing := require("prompt", r.Prompt); len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "Prompt is required"}
	}
	return nil
}

type CompletionResponse struct {
	Reply string `json:"reply"`
}

type AuthCheckRequest struct {
	Username string `json:"username"`
}

// Validate rejects only an empty username; whitespace is echoed back as sent.
func (r AuthCheckRequest) Validate() error {
	if r.Username == "" {
		return &ValidationError{Fields: []string{"username"}, Message: "Username is required"}
	}
	return nil
}

type AuthCheckUser struct {
	Username string `json:"username"`
}

type AuthCheckResponse struct {
	Success bool          `json:"success"`
	User    AuthCheckUser `json:"user"`
}

// LoginRequest represents the login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if missing := require("email", r.Email, "password", r.Password); len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "Email and password are required"}
	}
	return nil
}

// LoginResponse carries the session token
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"type"`
}

// GenerateRequest is the code generation form. Template is optional.
type GenerateRequest struct {
	ProjectName string `json:"projectName"`
	Framework   string `json:"framework"`
	Template    string `json:"template"`
	Prompt      string `json:"prompt"`
}

func (r GenerateRequest) Validate() error {
	missing := require("projectName", r.ProjectName, "framework", r.Framework, "prompt", r.Prompt)
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Framework   string `json:"framework"`
}

func (r CreateProjectRequest) Validate() error {
	if missing := require("name", r.Name, "framework", r.Framework); len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

type DeployRequest struct {
	HTML string `json:"html"`
}

func (r DeployRequest) Validate() error {
	if missing := require("html", r.HTML); len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "Preview HTML is required"}
	}
	return nil
}

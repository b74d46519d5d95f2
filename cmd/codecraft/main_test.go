package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/pkg/dashboard"
)

func newStubAPI(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" && r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}

		switch r.URL.Path {
		case "/api/login":
			_ = json.NewEncoder(w).Encode(models.LoginResponse{Token: "tok", TokenType: "Bearer"})
		case "/api/generate":
			var req models.GenerateRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Create a button", req.Prompt)
			_, _ = w.Write([]byte(`{"code":"<button/>","preview":"<html><button/></html>","files":[]}`))
		case "/api/projects":
			_, _ = w.Write([]byte(`[
				{"id":"6f1c2b9e-8a51-4c1f-9d3e-0a7b6c5d4e3f","name":"Live","framework":"react","status":"deployed","deploymentUrl":"http://sites/live/"},
				{"id":"0b9e7f3a-2c4d-4e5f-8a6b-1c2d3e4f5a6b","name":"Draft","framework":"vue","status":"draft"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginThenGenerate(t *testing.T) {
	t.Setenv(tokenEnv, "")
	ts := newStubAPI(t)
	tokenFile := filepath.Join(t.TempDir(), "token")
	preview := filepath.Join(t.TempDir(), "preview.html")

	out, err := run(t, "--api-url", ts.URL, "--token-file", tokenFile,
		"login", "--email", "ada@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as ada@example.com")

	saved, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "tok", strings.TrimSpace(string(saved)))

	out, err = run(t, "--api-url", ts.URL, "--token-file", tokenFile,
		"generate", "--name", "Demo", "--template", "custom", "-o", preview, "Create a button")
	require.NoError(t, err)
	assert.Contains(t, out, "<button/>")
	assert.Contains(t, out, "Code generated successfully!")

	html, err := os.ReadFile(preview)
	require.NoError(t, err)
	assert.Equal(t, "<html><button/></html>", string(html))
}

func TestGenerateWithoutSession(t *testing.T) {
	t.Setenv(tokenEnv, "")
	ts := newStubAPI(t)

	_, err := run(t, "--api-url", ts.URL, "--token-file", filepath.Join(t.TempDir(), "missing"),
		"generate", "--name", "Demo", "Create a button")
	assert.ErrorIs(t, err, dashboard.ErrUnauthorized)
}

func TestProjectsList(t *testing.T) {
	t.Setenv(tokenEnv, "tok")
	ts := newStubAPI(t)

	out, err := run(t, "--api-url", ts.URL, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Live")
	assert.Contains(t, out, "Draft")

	out, err = run(t, "--api-url", ts.URL, "projects", "list", "--deployed")
	require.NoError(t, err)
	assert.Contains(t, out, "http://sites/live/")
	assert.NotContains(t, out, "Draft")
}

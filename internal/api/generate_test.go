package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codecraft/internal/models"
)

var demoRequest = models.GenerateRequest{
	ProjectName: "Demo",
	Framework:   "react",
	Template:    "custom",
	Prompt:      "Create a button",
}

func TestHandleGenerate(t *testing.T) {
	ts := setupTestServer(t)
	ts.completer.reply = `{"code":"<button/>","preview":"<html><button/></html>","files":[]}`

	resp := ts.do(t, http.MethodPost, "/api/generate", demoRequest, ts.sessionToken(t, testUser))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result models.GenerationResult
	decode(t, resp, &result)
	assert.Equal(t, "<button/>", result.Code)
	assert.Equal(t, "<html><button/></html>", result.Preview)
	assert.NotNil(t, result.Files)
	assert.Empty(t, result.Files)

	require.Len(t, ts.completer.prompts, 1)
	assert.Contains(t, ts.completer.prompts[0], "Create a button")

	used, err := ts.miniRedis.Get(usageKey(testUser.ID))
	require.NoError(t, err)
	assert.Equal(t, "1", used)
}

func TestHandleGenerate_Validation(t *testing.T) {
	ts := setupTestServer(t)

	req := demoRequest
	req.Prompt = ""
	resp := ts.do(t, http.MethodPost, "/api/generate", req, ts.sessionToken(t, testUser))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	decode(t, resp, &result)
	assert.Equal(t, "missing required fields: prompt", result["error"])
	assert.Empty(t, ts.completer.prompts)
	assert.False(t, ts.miniRedis.Exists(usageKey(testUser.ID)))
}

func TestHandleGenerate_UpstreamError(t *testing.T) {
	ts := setupTestServer(t)
	ts.completer.err = errors.New("Rate limit reached for gpt-3.5-turbo")

	resp := ts.do(t, http.MethodPost, "/api/generate", demoRequest, ts.sessionToken(t, testUser))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var result map[string]string
	decode(t, resp, &result)
	assert.Equal(t, "Rate limit reached for gpt-3.5-turbo", result["error"])
	assert.False(t, ts.miniRedis.Exists(usageKey(testUser.ID)))
}

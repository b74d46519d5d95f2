package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/internal/storage"
)

type mapPayloads map[uuid.UUID][]byte

func (m mapPayloads) LoadPayload(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, errors.New("deploy payload expired or missing")
}

func TestDeployer_Deploy(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	payloads := mapPayloads{id: []byte(`{"html":"<html><button/></html>"}`)}
	deployer := NewDeployer(payloads, store, "https://sites.example.com")

	result, err := deployer.Deploy(context.Background(), models.DeployJob{ProjectID: id})
	require.NoError(t, err)
	assert.Equal(t, "https://sites.example.com/"+id.String()+"/", result.Data)

	content, err := os.ReadFile(filepath.Join(store.Root(), id.String(), "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html><button/></html>", string(content))
}

func TestDeployer_DeployFailures(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	empty, broken := uuid.New(), uuid.New()
	deployer := NewDeployer(mapPayloads{
		empty:  []byte(`{"html":""}`),
		broken: []byte(`not json`),
	}, store, "https://sites.example.com")

	testCases := []struct {
		name string
		job  models.DeployJob
	}{
		{name: "missing project id", job: models.DeployJob{}},
		{name: "missing payload", job: models.DeployJob{ProjectID: uuid.New()}},
		{name: "empty html", job: models.DeployJob{ProjectID: empty}},
		{name: "malformed payload", job: models.DeployJob{ProjectID: broken}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := deployer.Deploy(context.Background(), tc.job)
			assert.Error(t, err)
		})
	}
}

func TestHTTPWebhookClient_Send(t *testing.T) {
	var received models.DeployEvent
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	event := models.DeployEvent{ProjectID: uuid.New(), Status: models.StatusDeployed, Timestamp: time.Now().UTC()}
	client := NewHTTPWebhookClient(time.Second)
	require.NoError(t, client.Send(context.Background(), ts.URL, event))
	assert.Equal(t, event.ProjectID, received.ProjectID)
	assert.Equal(t, models.StatusDeployed, received.Status)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	assert.Error(t, client.Send(context.Background(), failing.URL, event))
}

package projects

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codecraft/internal/models"
	"github.com/illegalcall/codecraft/pkg/database"
)

var projectColumns = []string{"id", "owner_id", "name", "description", "framework", "status", "deployment_url", "created_at", "updated_at"}

func setupTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, *miniredis.Miniredis) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	miniRedis := miniredis.RunT(t)

	clients := &database.Clients{
		DB:    sqlx.NewDb(mockDB, "sqlmock"),
		Redis: redis.NewClient(&redis.Options{Addr: miniRedis.Addr()}),
	}
	return NewRepository(clients), mock, miniRedis
}

func TestRepository_Create(t *testing.T) {
	repo, mock, miniRedis := setupTestRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projects")).
		WithArgs(sqlmock.AnyArg(), "user-1", "Demo", "A demo", "react", models.StatusDraft, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	project, err := repo.Create(context.Background(), "user-1", models.CreateProjectRequest{
		Name: "Demo", Description: "A demo", Framework: "react",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, project.ID)
	assert.Equal(t, models.StatusDraft, project.Status)

	status, err := miniRedis.Get(StatusKey(project.ID))
	require.NoError(t, err)
	assert.Equal(t, "draft", status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListOverlaysRedisStatus(t *testing.T) {
	repo, mock, miniRedis := setupTestRepository(t)

	first, second := uuid.New(), uuid.New()
	now := time.Now()
	url := "http://localhost:8080/sites/" + second.String() + "/"

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + selectColumns + " FROM projects WHERE owner_id = $1 ORDER BY updated_at DESC")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(projectColumns).
			AddRow(first.String(), "user-1", "One", "", "react", "draft", nil, now, now).
			AddRow(second.String(), "user-1", "Two", "", "vue", "building", url, now, now))

	miniRedis.Set(StatusKey(second), "deployed")
	miniRedis.Set(StatusKey(first), "bogus")

	list, err := repo.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, models.StatusDraft, list[0].Status, "unknown overlay values are ignored")
	assert.Nil(t, list[0].DeploymentURL)
	assert.Equal(t, models.StatusDeployed, list[1].Status)
	require.NotNil(t, list[1].DeploymentURL)
	assert.Equal(t, url, *list[1].DeploymentURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetNotFound(t *testing.T) {
	repo, mock, _ := setupTestRepository(t)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE id = $1 AND owner_id = $2")).
		WithArgs(sqlmock.AnyArg(), "user-2").
		WillReturnRows(sqlmock.NewRows(projectColumns))

	_, err := repo.Get(context.Background(), "user-2", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_SetStatusAndPayload(t *testing.T) {
	repo, mock, miniRedis := setupTestRepository(t)
	id := uuid.New()
	url := "https://sites.example.com/x/"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE projects SET status = $1, deployment_url = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(models.StatusDeployed, url, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetStatus(context.Background(), id, models.StatusDeployed, &url))
	status, _ := miniRedis.Get(StatusKey(id))
	assert.Equal(t, "deployed", status)

	require.NoError(t, repo.SavePayload(context.Background(), id, []byte(`{"html":"<p>hi</p>"}`), time.Hour))
	payload, err := repo.LoadPayload(context.Background(), id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"html":"<p>hi</p>"}`, string(payload))

	_, err = repo.LoadPayload(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

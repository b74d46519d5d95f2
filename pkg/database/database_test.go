package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectsTable(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	clients := &Clients{DB: sqlx.NewDb(mockDB, "sqlmock")}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS projects")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, clients.CreateProjectsTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

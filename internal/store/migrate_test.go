package store

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate(t *testing.T) {
	t.Run("RunsEveryStatement", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		for i := 0; i < 12; i++ {
			mock.ExpectExec("CREATE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
		}

		require.NoError(t, AutoMigrate(context.Background(), mock))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StopsOnFirstError", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
			WillReturnError(errors.New("permission denied"))

		err = AutoMigrate(context.Background(), mock)
		assert.EqualError(t, err, "permission denied")
	})
}

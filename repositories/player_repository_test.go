package repositories

import (
	"errors"
	"testing"

	"github.com/Dosada05/academy-system/sensitive"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritableColumnsSortedAndChecked(t *testing.T) {
	t.Parallel()

	cols, err := writableColumns(sensitive.Row{
		"position":          "GK",
		"first_name_cipher": []byte("Sara"),
		"photo_key":         "players/1/2/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first_name_cipher", "photo_key", "position"}, cols)

	_, err = writableColumns(sensitive.Row{`position"; DROP TABLE players; --`: "x"})
	require.ErrorIs(t, err, ErrPlayerColumn)

	_, err = writableColumns(sensitive.Row{"academy_id": 9})
	require.ErrorIs(t, err, ErrPlayerColumn)
}

func TestNewPostgresPlayerRepositorySelectList(t *testing.T) {
	t.Parallel()

	repo := NewPostgresPlayerRepository(nil).(*postgresPlayerRepository)
	assert.Equal(t, sensitive.StorageColumns(), repo.columns)
	assert.Contains(t, repo.selectList, `"first_name_cipher"`)
	assert.Contains(t, repo.selectList, `"academy_id"`)
}

func TestTranslatePlayerError(t *testing.T) {
	t.Parallel()

	err := translatePlayerError(&pq.Error{Code: pqInvalidTextRepr, Message: `invalid input syntax for type integer: "tall"`})
	require.ErrorIs(t, err, ErrPlayerInvalidValue)
	assert.Contains(t, err.Error(), "tall")

	assert.ErrorIs(t, translatePlayerError(&pq.Error{Code: pqForeignKeyViolation}), ErrAcademyNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, translatePlayerError(other))
}

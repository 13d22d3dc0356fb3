package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseWatcher/internal/domain"
)

func TestPostgresDeliveryLog_AlreadyDelivered(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	require.NoError(t, setupErr)
	defer db.Close()

	repo := NewPostgresDeliveryLog(db)
	ctx := context.Background()

	testCases := []struct {
		name      string
		keys      []string
		setupMock func()
		want      map[string]bool
		wantErr   bool
	}{
		{
			name: "returns delivered keys",
			keys: []string{"k1", "k2"},
			setupMock: func() {
				mock.ExpectQuery("SELECT delivery_key FROM delivered_items WHERE").
					WithArgs("42", "k1", "k2").
					WillReturnRows(sqlmock.NewRows([]string{"delivery_key"}).AddRow("k2"))
			},
			want: map[string]bool{"k2": true},
		},
		{
			name:      "no keys skips the query",
			keys:      nil,
			setupMock: func() {},
			want:      map[string]bool{},
		},
		{
			name: "database error returns error",
			keys: []string{"k1"},
			setupMock: func() {
				mock.ExpectQuery("SELECT delivery_key FROM delivered_items").
					WithArgs("42", "k1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMock()

			got, err := repo.AlreadyDelivered(ctx, "42", tc.keys)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresDeliveryLog_RecordDelivered(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	require.NoError(t, setupErr)
	defer db.Close()

	repo := NewPostgresDeliveryLog(db)
	n := domain.Notification{
		CourseID:    "42",
		CourseTitle: "Course X",
		Section:     "Week 1",
		Category:    domain.CategoryPreLecture,
		Item:        domain.Resource("Pre-Lecture Quiz", "https://lms/x?id=1"),
	}

	mock.ExpectExec("INSERT INTO delivered_items .* ON CONFLICT \\(delivery_key\\) DO NOTHING").
		WithArgs("42", "key-1", "Week 1", "pre_lecture", "Pre-Lecture Quiz", "https://lms/x?id=1", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.RecordDelivered(context.Background(), n, "key-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeliveryLog_EnsureSchema(t *testing.T) {
	db, mock, setupErr := sqlmock.New()
	require.NoError(t, setupErr)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS delivered_items").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresDeliveryLog(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeliveryLog_NilDB(t *testing.T) {
	t.Parallel()

	repo := NewPostgresDeliveryLog(nil)
	got, err := repo.AlreadyDelivered(context.Background(), "42", []string{"k"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, repo.RecordDelivered(context.Background(), domain.Notification{}, "k"))
}

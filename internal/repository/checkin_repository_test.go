package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexfit/gym-api/internal/models"
)

func newCheckinRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCheckinRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCheckinRepoMock(t)
	defer cleanup()
	repo := NewCheckinRepository(db)

	mock.ExpectExec("INSERT INTO checkins").
		WillReturnResult(sqlmock.NewResult(1, 1))

	checkin := &models.Checkin{GymID: "gym-1", ClassID: "c1", MemberID: "m1", OccurrenceDate: time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(context.Background(), checkin))
	assert.NotEmpty(t, checkin.ID)
	assert.False(t, checkin.CheckedInAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckinRepositoryCountForOccurrence(t *testing.T) {
	db, mock, cleanup := newCheckinRepoMock(t)
	defer cleanup()
	repo := NewCheckinRepository(db)

	date := time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM checkins WHERE class_id = $1 AND occurrence_date = $2")).
		WithArgs("c1", date).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountForOccurrence(context.Background(), "c1", date)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckinRepositoryExists(t *testing.T) {
	db, mock, cleanup := newCheckinRepoMock(t)
	defer cleanup()
	repo := NewCheckinRepository(db)

	date := time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("c1", "m1", date).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "c1", "m1", date)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckinRepositoryList(t *testing.T) {
	db, mock, cleanup := newCheckinRepoMock(t)
	defer cleanup()
	repo := NewCheckinRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "gym_id", "class_id", "member_id", "occurrence_date", "checked_in_at", "member_name", "class_title",
	}).AddRow("ci1", "gym-1", "c1", "m1", time.Now(), time.Now(), "Ana", "Yoga")

	mock.ExpectQuery("SELECT ci.id, ci.gym_id, ci.class_id").
		WithArgs("gym-1", "c1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM checkins ci")).
		WithArgs("gym-1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.CheckinFilter{GymID: "gym-1", ClassID: "c1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].MemberName)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

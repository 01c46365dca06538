package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexfit/gym-api/internal/models"
)

func newMemberMock(t *testing.T) (*MemberRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMemberRepository(sqlx.NewDb(db, "postgres")), mock
}

func memberRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "gym_id", "full_name", "email", "phone", "active", "waiver_signed_at", "joined_at",
	})
}

func TestMemberRepositoryFindByID(t *testing.T) {
	repo, mock := newMemberMock(t)

	joined := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM members WHERE id = \$1 LIMIT 1`).
		WithArgs("member-1").
		WillReturnRows(memberRows().AddRow("member-1", "gym-1", "Alex Doe", "alex@example.com", "", true, nil, joined))

	member, err := repo.FindByID(context.Background(), "member-1")
	require.NoError(t, err)
	assert.Equal(t, "Alex Doe", member.FullName)
	assert.Equal(t, "gym-1", member.GymID)
	assert.Nil(t, member.WaiverSignedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryCreateAssignsID(t *testing.T) {
	repo, mock := newMemberMock(t)

	mock.ExpectExec(`INSERT INTO members`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	member := &models.Member{GymID: "gym-1", FullName: "Alex Doe", Email: "alex@example.com", Active: true}
	require.NoError(t, repo.Create(context.Background(), member))
	assert.NotEmpty(t, member.ID)
	assert.False(t, member.JoinedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryListWithSearch(t *testing.T) {
	repo, mock := newMemberMock(t)

	joined := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM members WHERE gym_id = \$1 AND \(LOWER\(full_name\) LIKE \$2 OR LOWER\(email\) LIKE \$2\) ORDER BY full_name LIMIT 20 OFFSET 0`).
		WithArgs("gym-1", "%alex%").
		WillReturnRows(memberRows().AddRow("member-1", "gym-1", "Alex Doe", "alex@example.com", "", true, nil, joined))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM members WHERE gym_id = $1`)).
		WithArgs("gym-1", "%alex%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	members, total, err := repo.List(context.Background(), "gym-1", "Alex", 1, 20)
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryMarkWaiverSigned(t *testing.T) {
	repo, mock := newMemberMock(t)

	signedAt := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE members SET waiver_signed_at = $2 WHERE id = $1`)).
		WithArgs("member-1", signedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkWaiverSigned(context.Background(), "member-1", signedAt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

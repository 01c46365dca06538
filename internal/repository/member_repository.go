package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flexfit/gym-api/internal/models"
)

// MemberRepository provides database access for gym members.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs a member repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, gym_id, full_name, email, phone, active, waiver_signed_at, joined_at`

// FindByID returns a member by identifier.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	query := fmt.Sprintf("SELECT %s FROM members WHERE id = $1 LIMIT 1", memberColumns)
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find member by id: %w", err)
	}
	return &member, nil
}

// Create persists a new member record.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}

	const query = `INSERT INTO members (id, gym_id, full_name, email, phone, active, waiver_signed_at, joined_at)
		VALUES (:id, :gym_id, :full_name, :email, :phone, :active, :waiver_signed_at, :joined_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// List returns members for a gym, optionally filtered by a name/email search
// term, paginated.
func (r *MemberRepository) List(ctx context.Context, gymID, search string, page, pageSize int) ([]models.Member, int, error) {
	base := "FROM members WHERE gym_id = $1"
	args := []interface{}{gymID}
	if search != "" {
		base += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s %s ORDER BY full_name LIMIT %d OFFSET %d", memberColumns, base, pageSize, offset)
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}
	return members, total, nil
}

// MarkWaiverSigned records the waiver signature timestamp.
func (r *MemberRepository) MarkWaiverSigned(ctx context.Context, id string, signedAt time.Time) error {
	const query = `UPDATE members SET waiver_signed_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, signedAt); err != nil {
		return fmt.Errorf("mark waiver signed: %w", err)
	}
	return nil
}

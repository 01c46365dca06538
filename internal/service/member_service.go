package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

type memberRepository interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
	Create(ctx context.Context, member *models.Member) error
	List(ctx context.Context, gymID, search string, page, pageSize int) ([]models.Member, int, error)
	MarkWaiverSigned(ctx context.Context, id string, signedAt time.Time) error
}

// MemberService manages gym member profiles.
type MemberService struct {
	repo      memberRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMemberService constructs a MemberService.
func NewMemberService(repo memberRepository, validate *validator.Validate, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MemberService{repo: repo, validator: validate, logger: logger}
}

// Register creates a new member profile.
func (s *MemberService) Register(ctx context.Context, gymID string, req dto.CreateMemberRequest) (*models.Member, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}

	member := &models.Member{
		GymID:    gymID,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Active:   true,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist member")
	}
	s.logger.Info("member registered", zap.String("member_id", member.ID), zap.String("gym_id", gymID))
	return member, nil
}

// Get returns one member, scoped to the gym.
func (s *MemberService) Get(ctx context.Context, gymID, memberID string) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	if member.GymID != gymID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "member belongs to another gym")
	}
	return member, nil
}

// List returns members for a gym.
func (s *MemberService) List(ctx context.Context, gymID, search string, page, pageSize int) ([]models.Member, *models.Pagination, error) {
	members, total, err := s.repo.List(ctx, gymID, search, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return members, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// SignWaiver records the waiver signature for a member.
func (s *MemberService) SignWaiver(ctx context.Context, gymID, memberID string) (*models.Member, error) {
	member, err := s.Get(ctx, gymID, memberID)
	if err != nil {
		return nil, err
	}
	signedAt := time.Now().UTC()
	if err := s.repo.MarkWaiverSigned(ctx, member.ID, signedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record waiver")
	}
	member.WaiverSignedAt = &signedAt
	return member, nil
}

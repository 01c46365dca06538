package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
	"github.com/flexfit/gym-api/pkg/response"
)

type checkinService interface {
	Checkin(ctx context.Context, gymID string, req dto.CheckinRequest) (*models.Checkin, error)
	List(ctx context.Context, filter models.CheckinFilter) ([]models.CheckinDetail, *models.Pagination, error)
}

// CheckinHandler exposes the kiosk check-in endpoints.
type CheckinHandler struct {
	service checkinService
}

// NewCheckinHandler constructs a check-in handler.
func NewCheckinHandler(svc checkinService) *CheckinHandler {
	return &CheckinHandler{service: svc}
}

// Create godoc
// @Summary Check a member in to a class occurrence
// @Tags Checkins
// @Accept json
// @Produce json
// @Param payload body dto.CheckinRequest true "Check-in payload"
// @Success 201 {object} response.Envelope
// @Router /checkins [post]
func (h *CheckinHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	checkin, err := h.service.Checkin(c.Request.Context(), claims.GymID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, checkin)
}

// List godoc
// @Summary List check-ins
// @Tags Checkins
// @Produce json
// @Param class_id query string false "Filter by class"
// @Param member_id query string false "Filter by member"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /checkins [get]
func (h *CheckinHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.CheckinFilter{
		GymID:    claims.GymID,
		ClassID:  c.Query("class_id"),
		MemberID: c.Query("member_id"),
	}
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start, expected YYYY-MM-DD"))
			return
		}
		filter.StartDate = &parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end, expected YYYY-MM-DD"))
			return
		}
		filter.EndDate = &parsed
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	checkins, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, checkins, pagination)
}

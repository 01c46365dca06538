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

type classService interface {
	Create(ctx context.Context, userID string, req dto.CreateClassRequest) (*models.GymClass, error)
	ListOccurrences(ctx context.Context, gymID string, start, end time.Time) ([]models.Occurrence, error)
	ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.GymClass, *models.Pagination, error)
	Get(ctx context.Context, gymID, classID string) (*models.GymClass, error)
	Delete(ctx context.Context, gymID, classID string) error
	DeleteSeries(ctx context.Context, gymID, parentRecurrenceID string) (int64, error)
}

// ClassHandler exposes class schedule endpoints. Listing returns expanded
// occurrences, not the stored class rows; templates are available separately.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// ListOccurrences godoc
// @Summary List expanded class occurrences for a date window
// @Tags Classes
// @Produce json
// @Param start query string false "Window start (YYYY-MM-DD), defaults to today"
// @Param end query string false "Window end (YYYY-MM-DD), defaults to start plus the horizon"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) ListOccurrences(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var start, end time.Time
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid start, expected YYYY-MM-DD"))
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid end, expected YYYY-MM-DD"))
			return
		}
		end = parsed
	}

	occurrences, err := h.service.ListOccurrences(c.Request.Context(), claims.GymID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occurrences, nil)
}

// ListTemplates godoc
// @Summary List stored class rows without expansion
// @Tags Classes
// @Produce json
// @Param level query string false "Filter by level"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /classes/templates [get]
func (h *ClassHandler) ListTemplates(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ClassFilter{GymID: claims.GymID, Level: c.Query("level")}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	classes, pagination, err := h.service.ListClasses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get one stored class row
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	class, err := h.service.Get(c.Request.Context(), claims.GymID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create a class, one-off or recurring
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.GymID == "" {
		req.GymID = claims.GymID
	}
	if req.GymID != claims.GymID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot create classes for another gym"))
		return
	}

	class, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Delete godoc
// @Summary Delete one class
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.GymID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteSeries godoc
// @Summary Delete every class in a recurrence series
// @Tags Classes
// @Produce json
// @Param parentId path string true "Parent recurrence ID"
// @Success 200 {object} response.Envelope
// @Router /classes/series/{parentId} [delete]
func (h *ClassHandler) DeleteSeries(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rows, err := h.service.DeleteSeries(c.Request.Context(), claims.GymID, c.Param("parentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": rows}, nil)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/service"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
	"github.com/flexfit/gym-api/pkg/response"
)

// MemberHandler exposes member profile endpoints.
type MemberHandler struct {
	service *service.MemberService
}

// NewMemberHandler constructs a member handler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// Create godoc
// @Summary Register a member
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body dto.CreateMemberRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Router /members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	member, err := h.service.Register(c.Request.Context(), claims.GymID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// List godoc
// @Summary List members
// @Tags Members
// @Produce json
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	members, pagination, err := h.service.List(c.Request.Context(), claims.GymID, c.Query("search"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, pagination)
}

// Get godoc
// @Summary Get a member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	member, err := h.service.Get(c.Request.Context(), claims.GymID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// SignWaiver godoc
// @Summary Record a member's waiver signature
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Router /members/{id}/waiver [post]
func (h *MemberHandler) SignWaiver(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	member, err := h.service.SignWaiver(c.Request.Context(), claims.GymID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

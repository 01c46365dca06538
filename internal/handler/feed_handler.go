package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gym-api/internal/service"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
	"github.com/flexfit/gym-api/pkg/response"
)

// FeedHandler exposes the iCalendar subscription feed.
type FeedHandler struct {
	service *service.FeedService
}

// NewFeedHandler constructs a feed handler.
func NewFeedHandler(svc *service.FeedService) *FeedHandler {
	return &FeedHandler{service: svc}
}

// Token godoc
// @Summary Mint a signed calendar feed token for the authenticated gym
// @Tags Feed
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /feed/token [get]
func (h *FeedHandler) Token(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	token, expiresAt, err := h.service.Token(claims.GymID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"token": token, "expires_at": expiresAt}, nil)
}

// Calendar godoc
// @Summary Serve the gym schedule as an ICS document
// @Tags Feed
// @Param token query string true "Signed feed token"
// @Produce plain
// @Success 200
// @Router /feed/calendar.ics [get]
func (h *FeedHandler) Calendar(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	gymID, err := h.service.VerifyToken(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	ics, err := h.service.Render(c.Request.Context(), gymID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.String(http.StatusOK, ics)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

type checkinServiceMock struct {
	checkinResp *models.Checkin
	checkinErr  error
	listResp    []models.CheckinDetail
	listErr     error

	lastGymID  string
	lastReq    dto.CheckinRequest
	lastFilter models.CheckinFilter
}

func (m *checkinServiceMock) Checkin(ctx context.Context, gymID string, req dto.CheckinRequest) (*models.Checkin, error) {
	m.lastGymID = gymID
	m.lastReq = req
	return m.checkinResp, m.checkinErr
}

func (m *checkinServiceMock) List(ctx context.Context, filter models.CheckinFilter) ([]models.CheckinDetail, *models.Pagination, error) {
	m.lastFilter = filter
	return m.listResp, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.listResp)}, m.listErr
}

func TestCheckinHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &checkinServiceMock{
		checkinResp: &models.Checkin{ID: "checkin-1", MemberID: "member-1"},
	}
	h := NewCheckinHandler(mockSvc)

	payload := `{"member_id":"member-1","class_id":"class-1","occurrence_date":"2025-04-16"}`
	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/checkins", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "gym-1", mockSvc.lastGymID)
	assert.Equal(t, "member-1", mockSvc.lastReq.MemberID)
}

func TestCheckinHandlerCreateCapacityReached(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &checkinServiceMock{checkinErr: appErrors.ErrCapacityReached}
	h := NewCheckinHandler(mockSvc)

	payload := `{"member_id":"member-1","class_id":"class-1","occurrence_date":"2025-04-16"}`
	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/checkins", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, appErrors.ErrCapacityReached.Code, body.Error.Code)
}

func TestCheckinHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewCheckinHandler(&checkinServiceMock{})

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/checkins", bytes.NewBufferString(`{"member_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckinHandlerListScopesToGym(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &checkinServiceMock{
		listResp: []models.CheckinDetail{{MemberName: "Alex Doe", ClassTitle: "Morning HIIT"}},
	}
	h := NewCheckinHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/checkins?class_id=class-1&start=2025-04-01&end=2025-04-30", nil)
	c.Request = req

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gym-1", mockSvc.lastFilter.GymID)
	assert.Equal(t, "class-1", mockSvc.lastFilter.ClassID)
	require.NotNil(t, mockSvc.lastFilter.StartDate)
	require.NotNil(t, mockSvc.lastFilter.EndDate)
}

func TestCheckinHandlerListBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewCheckinHandler(&checkinServiceMock{})

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/checkins?start=April+1", nil)
	c.Request = req

	h.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

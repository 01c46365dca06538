package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/middleware"
	"github.com/flexfit/gym-api/internal/models"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

type classServiceMock struct {
	createResp *models.GymClass
	createErr  error
	listResp   []models.Occurrence
	listErr    error
	deleteErr  error
	seriesRows int64
	seriesErr  error

	lastCreate dto.CreateClassRequest
	lastGymID  string
	lastStart  time.Time
	lastEnd    time.Time
}

func (m *classServiceMock) Create(ctx context.Context, userID string, req dto.CreateClassRequest) (*models.GymClass, error) {
	m.lastCreate = req
	return m.createResp, m.createErr
}

func (m *classServiceMock) ListOccurrences(ctx context.Context, gymID string, start, end time.Time) ([]models.Occurrence, error) {
	m.lastGymID = gymID
	m.lastStart = start
	m.lastEnd = end
	return m.listResp, m.listErr
}

func (m *classServiceMock) ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.GymClass, *models.Pagination, error) {
	return nil, nil, nil
}

func (m *classServiceMock) Get(ctx context.Context, gymID, classID string) (*models.GymClass, error) {
	return nil, appErrors.ErrNotFound
}

func (m *classServiceMock) Delete(ctx context.Context, gymID, classID string) error {
	return m.deleteErr
}

func (m *classServiceMock) DeleteSeries(ctx context.Context, gymID, parentRecurrenceID string) (int64, error) {
	return m.seriesRows, m.seriesErr
}

func staffContext(w *httptest.ResponseRecorder) (*gin.Context, *models.JWTClaims) {
	c, _ := gin.CreateTestContext(w)
	claims := &models.JWTClaims{UserID: "user-1", GymID: "gym-1", Role: models.RoleStaff}
	c.Set(middleware.ContextUserKey, claims)
	return c, claims
}

func TestClassHandlerListOccurrences(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &classServiceMock{
		listResp: []models.Occurrence{{ID: "occ-1", Title: "Morning HIIT"}},
	}
	h := NewClassHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes?start=2025-04-16&end=2025-04-30", nil)
	c.Request = req

	h.ListOccurrences(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gym-1", mockSvc.lastGymID)
	assert.Equal(t, time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC), mockSvc.lastStart)
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), mockSvc.lastEnd)

	var body struct {
		Data []models.Occurrence `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Morning HIIT", body.Data[0].Title)
}

func TestClassHandlerListOccurrencesBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewClassHandler(&classServiceMock{})

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes?start=16-04-2025", nil)
	c.Request = req

	h.ListOccurrences(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerListOccurrencesUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewClassHandler(&classServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes", nil)
	c.Request = req

	h.ListOccurrences(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClassHandlerCreateDefaultsGym(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &classServiceMock{
		createResp: &models.GymClass{ID: "class-1", Title: "Yoga Basics"},
	}
	h := NewClassHandler(mockSvc)

	payload := `{"title":"Yoga Basics","date":"2025-04-16","start_time":"18:00","end_time":"19:00"}`
	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "gym-1", mockSvc.lastCreate.GymID)
}

func TestClassHandlerCreateCrossGymRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &classServiceMock{}
	h := NewClassHandler(mockSvc)

	payload := `{"gym_id":"gym-2","title":"Yoga","date":"2025-04-16","start_time":"18:00","end_time":"19:00"}`
	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, mockSvc.lastCreate.Title)
}

func TestClassHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewClassHandler(&classServiceMock{})

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewClassHandler(&classServiceMock{})

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/classes/class-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}

	h.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestClassHandlerDeleteSeries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &classServiceMock{seriesRows: 3}
	h := NewClassHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/classes/series/parent-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "parentId", Value: "parent-1"}}

	h.DeleteSeries(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Deleted int64 `json:"deleted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Data.Deleted)
}

func TestClassHandlerDeleteSeriesNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &classServiceMock{seriesErr: appErrors.ErrNotFound}
	h := NewClassHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := staffContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/classes/series/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "parentId", Value: "missing"}}

	h.DeleteSeries(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

package handlers

import (
	"context"
	"net/http"

	"homeguard/internal/models"
	"homeguard/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockNormalizer struct {
	batch []models.Reading
	err   error

	lastPayload any
	calls       int
}

func (m *mockNormalizer) Normalize(payload any) ([]models.Reading, error) {
	m.calls++
	m.lastPayload = payload
	return m.batch, m.err
}

type mockJobs struct {
	submitJob models.Job
	submitErr error
	statusJob models.Job
	statusOK  bool

	lastBatch    []models.Reading
	lastStatusID string
	submitCalls  int
}

func (m *mockJobs) Submit(ctx context.Context, batch []models.Reading) (models.Job, error) {
	m.submitCalls++
	m.lastBatch = batch
	return m.submitJob, m.submitErr
}

func (m *mockJobs) Status(id string) (models.Job, bool) {
	m.lastStatusID = id
	return m.statusJob, m.statusOK
}

type mockEventLog struct {
	events []models.AlertEvent
	err    error

	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.AlertEvent, error) {
	m.lastFilter = f
	return m.events, m.err
}

type mockReadings struct {
	rows []models.Reading
	err  error

	lastLimit int
}

func (m *mockReadings) Recent(ctx context.Context, limit int) ([]models.Reading, error) {
	m.lastLimit = limit
	return m.rows, m.err
}

// ---- Router helpers ----

const testAPIKey = "secret-key"

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, testAPIKey, nil)
	return h.InitRoutes()
}

func keyHeader(key string) http.Header {
	hdr := http.Header{}
	hdr.Set(apiKeyHeader, key)
	return hdr
}

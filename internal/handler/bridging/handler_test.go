package bridging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puskesmas-merdeka/simpus-api/internal/integration"
	"github.com/puskesmas-merdeka/simpus-api/internal/model"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/memory"
	"github.com/puskesmas-merdeka/simpus-api/internal/service/audit"
	bridgingsvc "github.com/puskesmas-merdeka/simpus-api/internal/service/bridging"
	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
	"github.com/puskesmas-merdeka/simpus-api/pkg/httputil"
)

const (
	budi       = "0b6f1c9e-4a7d-4c1e-9f3a-000000000001"
	ahmad      = "0b6f1c9e-4a7d-4c1e-9f3a-000000000003"
	firstVisit = "5e2d8a41-7b3c-4f0a-8c6d-000000000001"
)

type stubSource struct{}

func (stubSource) Float64() float64 { return 0.95 }
func (stubSource) Intn(int) int      { return 3 }
func (stubSource) Now() time.Time    { return time.UnixMilli(1705300000000) }

type downGateway struct {
	integration.Gateway
}

func (downGateway) SyncPatient(context.Context, *model.FHIRPatientInput) (*model.FHIRPatient, string, error) {
	return nil, "", apperrors.NewUnavailable(integration.ServiceSatuSehat, context.DeadlineExceeded)
}

func allow(c *gin.Context) { c.Next() }

func setupRouter(t *testing.T, gw integration.Gateway, editor gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := memory.NewSeeded(memory.WithLatency(0))
	require.NoError(t, err)
	store := s.Repositories()
	svc := bridgingsvc.NewService(gw, store, audit.NewService(store.AuditLogs, nil, "", nil))

	r := gin.New()
	NewHandler(svc, editor).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, httputil.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp httputil.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestValidateBPJS(t *testing.T) {
	r := setupRouter(t, integration.NewLocal(stubSource{}), allow)

	w, resp := do(r, http.MethodPost, "/api/v1/patients/"+budi+"/bpjs/validate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	w, resp = do(r, http.MethodPost, "/api/v1/patients/"+ahmad+"/bpjs/validate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Tidak ada No. BPJS", resp.Error.Message)

	w, _ = do(r, http.MethodPost, "/api/v1/patients/not-a-uuid/bpjs/validate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSEPBody(t *testing.T) {
	r := setupRouter(t, integration.NewLocal(stubSource{}), allow)

	w, resp := do(r, http.MethodPost, "/api/v1/encounters/"+firstVisit+"/sep", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)

	w, _ = do(r, http.MethodPost, "/api/v1/encounters/"+firstVisit+"/sep", `{"catatan":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncPatientUnavailable(t *testing.T) {
	r := setupRouter(t, downGateway{}, allow)

	w, resp := do(r, http.MethodPost, "/api/v1/patients/"+budi+"/fhir/sync", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, resp.Success)

	w, resp = do(r, http.MethodGet, "/api/v1/sync-jobs?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	jobs, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, jobs, 1)
	assert.Equal(t, string(model.SyncJobFailed), jobs[0].(map[string]interface{})["status"])
}

func TestSearchPatientRequiresNIK(t *testing.T) {
	r := setupRouter(t, integration.NewLocal(stubSource{}), allow)

	w, _ := do(r, http.MethodGet, "/api/v1/fhir/patients", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := do(r, http.MethodGet, "/api/v1/fhir/patients?nik=3201012505850001", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestEditorGate(t *testing.T) {
	deny := func(c *gin.Context) {
		httputil.RespondWithError(c, apperrors.Forbidden("not allowed"))
	}
	r := setupRouter(t, integration.NewLocal(stubSource{}), deny)

	for _, path := range []string{
		"/api/v1/patients/" + budi + "/bpjs/validate",
		"/api/v1/patients/" + budi + "/fhir/sync",
		"/api/v1/encounters/" + firstVisit + "/sep",
		"/api/v1/encounters/" + firstVisit + "/fhir/sync",
	} {
		w, _ := do(r, http.MethodPost, path, "")
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	w, _ := do(r, http.MethodGet, "/api/v1/sync-jobs", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration-api/internal/config"
	"github.com/aanand-mishra/student-registration-api/internal/http/middleware"
	"github.com/aanand-mishra/student-registration-api/internal/storage/sqlite"
	"github.com/aanand-mishra/student-registration-api/internal/types"
)

const origin = "http://127.0.0.1:5501"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Env: "dev",
		Database: config.Database{
			Driver:           config.DriverSQLite,
			ConnectionString: filepath.Join(t.TempDir(), "students.db"),
		},
		CORS: config.CORS{AllowedOrigin: origin},
	}

	store, err := sqlite.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(cfg, store, log))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestReferenceRoutesAreCaseInsensitive(t *testing.T) {
	srv := newServer(t)

	for _, path := range []string{
		"/api/student/GetGenders",
		"/api/Student/getgenders",
		"/API/STUDENT/GETGENDERS",
	} {
		resp, body := do(t, srv, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, path)

		var genders []types.Gender
		require.NoError(t, json.Unmarshal(body, &genders))
		assert.Len(t, genders, 3, path)
	}

	resp, body := do(t, srv, http.MethodGet, "/api/student/GetQualifications", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"qualificationId":1`)

	resp, body = do(t, srv, http.MethodGet, "/api/student/GetModes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"mode":"Online"`)
}

func TestStudentLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/student/GetAllStudents", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", string(body))

	resp, body = do(t, srv, http.MethodPost, "/api/student/addstudent", `{
		"fullName":"Jane Doe","email":"jane@x.com","phoneNumber":"555-0100",
		"address":"1 Main St","dateOfBirth":"1990-01-01","genderId":2,
		"qualificationId":2,"modeId":1,"courseStartDate":"2024-09-01"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var created types.StudentCreated
	require.NoError(t, json.Unmarshal(body, &created))
	require.Positive(t, created.StudentID)

	resp, body = do(t, srv, http.MethodGet, "/api/student/GetAllStudents", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var students []types.StudentRecord
	require.NoError(t, json.Unmarshal(body, &students))
	require.Len(t, students, 1)
	assert.Equal(t, created.StudentID, students[0].ID)
	assert.Equal(t, "Female", students[0].Gender)
	assert.Equal(t, "01-09-2024", students[0].StartDate)

	// Same email again is rejected by the database.
	resp, body = do(t, srv, http.MethodPost, "/api/student/addstudent", `{
		"fullName":"Jane Again","email":"jane@x.com","phoneNumber":"555-0101",
		"address":"2 Main St","dateOfBirth":"1991-01-01","genderId":2,
		"qualificationId":2,"modeId":1,"courseStartDate":"2024-09-01"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"errorCode":"2067"`)

	resp, body = do(t, srv, http.MethodDelete, "/api/student/deletestudent",
		`{"id":`+jsonInt(created.StudentID)+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "deleted")

	resp, body = do(t, srv, http.MethodGet, "/api/student/GetAllStudents", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", string(body))
}

func TestDeleteWithoutIdIs400(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodDelete, "/api/student/DeleteStudent", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"status":"error","error":"Id is required."}`, string(body))
}

func TestWrongMethodIs405(t *testing.T) {
	srv := newServer(t)

	resp, _ := do(t, srv, http.MethodGet, "/api/student/addstudent", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthzRequestIDAndMetrics(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	resp, body = do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/student/deletestudent", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func requestSeries(t *testing.T) int {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "http_requests_total" {
			return len(mf.GetMetric())
		}
	}
	return 0
}

func preflight(t *testing.T, srv *httptest.Server, path string) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://elsewhere.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestMetricsSeriesStayBounded(t *testing.T) {
	srv := newServer(t)

	// One request of each shape creates whatever series it needs.
	resp, _ := do(t, srv, http.MethodGet, "/api/student/getgenders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preflight(t, srv, "/random/warmup")
	resp, _ = do(t, srv, http.MethodGet, "/random/warmup", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	before := requestSeries(t)

	for _, path := range []string{"/api/Student/GetGenders", "/API/student/getgenders", "/api/student/GETGENDERS"} {
		resp, _ := do(t, srv, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
	for i := 0; i < 5; i++ {
		path := "/random/" + strconv.Itoa(i)
		preflight(t, srv, path)
		resp, _ := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	assert.Equal(t, before, requestSeries(t))
}

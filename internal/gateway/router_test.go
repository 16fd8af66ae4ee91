package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"club-la-victoria/internal/accessqr"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/common/observability"
	"club-la-victoria/internal/membership"
	"club-la-victoria/internal/reservation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const testRedirect = "https://reservas.example.com/turnos"

type testEnv struct {
	router      *gin.Engine
	reader      *metric.ManualReader
	lookupCalls atomic.Int32
	lookupBody  atomic.Value
	ready       error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{reader: metric.NewManualReader()}
	env.lookupBody.Store(`{"data": true}`)

	lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.lookupCalls.Add(1)
		body := env.lookupBody.Load().(string)
		if body == "503" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(lookup.Close)

	qr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG fake"))
	}))
	t.Cleanup(qr.Close)

	log := logger.NewTestLogger(t)

	mcfg := membership.DefaultConfig()
	mcfg.BaseURL = lookup.URL + "/api/v1/socios/reserva"
	mcfg.Timeout = time.Second
	verifier := membership.NewService(membership.ServiceDependencies{Logger: log}, mcfg)

	qcfg := accessqr.DefaultConfig()
	qcfg.BaseURL = qr.URL + "/"
	qcfg.Timeout = time.Second

	env.router = NewRouter(Dependencies{
		Reservation:      reservation.NewService(&reservation.Config{RedirectURL: testRedirect}, log),
		AccessQR:         accessqr.NewService(accessqr.ServiceDependencies{Logger: log}, qcfg),
		ReservationForms: membership.NewFormSet("reservation", verifier),
		QRForms:          membership.NewFormSet("access_qr", verifier),
		Observability:    observability.NewWithReader(env.reader, "gateway-test"),
		Logger:           log,
		AllowedOrigins:   "https://www.clublavictoria.com.ar",
		Ready:            func(ctx context.Context) error { return env.ready },
	})
	return env
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://www.clublavictoria.com.ar")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ==========================
// Reservations
// ==========================

func TestReservation_ValidRedirects(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/reservations", map[string]string{"dni": "12345678", "activity": "Tenis"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "valid", body["outcome"])
	assert.Equal(t, testRedirect, body["redirectUrl"])
	notes := body["notifications"].([]interface{})
	require.Len(t, notes, 1)
	assert.Equal(t, "Reserva iniciada para Tenis. DNI: 12345678", notes[0].(map[string]interface{})["title"])

	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, "https://www.clublavictoria.com.ar", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestReservation_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		payload    interface{}
		lookup     string
		wantStatus int
		wantCode   string
		wantCalls  int32
	}{
		{"format error", map[string]string{"dni": "1234", "activity": "Tenis"}, `true`, http.StatusUnprocessableEntity, "INVALID_MEMBER_ID", 0},
		{"not a member", map[string]string{"dni": "12345678", "activity": "Tenis"}, `{}`, http.StatusNotFound, "MEMBERSHIP_NOT_FOUND", 1},
		{"network failure", map[string]string{"dni": "12345678", "activity": "Tenis"}, `503`, http.StatusBadGateway, "MEMBERSHIP_CHECK_FAILED", 1},
		{"unexpected shape", map[string]string{"dni": "12345678", "activity": "Tenis"}, `[1]`, http.StatusBadGateway, "MEMBERSHIP_UNEXPECTED_SHAPE", 1},
		{"missing activity", map[string]string{"dni": "12345678"}, `true`, http.StatusUnprocessableEntity, "REQUEST_VALIDATION_FAILED", 0},
		{"unknown field", map[string]string{"dni": "12345678", "activity": "x", "foo": "bar"}, `true`, http.StatusUnprocessableEntity, "REQUEST_VALIDATION_FAILED", 0},
		{"not json", `{dni`, `true`, http.StatusUnprocessableEntity, "REQUEST_VALIDATION_FAILED", 0},
		{"unknown activity", map[string]string{"dni": "12345678", "activity": "Golf"}, `true`, http.StatusUnprocessableEntity, "REQUEST_VALIDATION_FAILED", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.lookupBody.Store(tt.lookup)

			w := env.do(http.MethodPost, "/api/v1/reservations", tt.payload)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decode(t, w)["code"])
			assert.Equal(t, tt.wantCalls, env.lookupCalls.Load())
		})
	}
}

func TestReservation_ActivityResolvedByID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/reservations", map[string]string{"dni": "12345678", "activity": "padel"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	notes := decode(t, w)["notifications"].([]interface{})
	require.Len(t, notes, 1)
	assert.Equal(t, "Reserva iniciada para Pádel. DNI: 12345678", notes[0].(map[string]interface{})["title"])
}

func TestListActivities(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/activities", nil)
	require.Equal(t, http.StatusOK, w.Code)

	activities := decode(t, w)["activities"].([]interface{})
	require.Len(t, activities, 6)
	assert.Equal(t, "futbol", activities[0].(map[string]interface{})["id"])
}

func TestReservation_FormatErrorMessage(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/v1/reservations", map[string]string{"dni": "123456789", "activity": "Tenis"})

	body := decode(t, w)
	assert.Equal(t, membership.MsgIDTooLong, body["message"])
	extra := body["extra"].(map[string]interface{})
	assert.Equal(t, "format_error", extra["outcome"])
}

// ==========================
// Access QR
// ==========================

func TestAccessQR_Issue(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/access-qr", map[string]string{"dni": "1234567"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Contains(t, body["qrUrl"], "data=dni%3A1234567")
	assert.Equal(t, "/api/v1/access-qr/1234567/download", body["downloadUrl"])
	assert.Equal(t, "qr-acceso-1234567.png", body["filename"])
}

func TestAccessQR_IssueNotMember(t *testing.T) {
	env := newTestEnv(t)
	env.lookupBody.Store(`false`)

	w := env.do(http.MethodPost, "/api/v1/access-qr", map[string]string{"dni": "1234567"})
	require.Equal(t, http.StatusNotFound, w.Code)

	extra := decode(t, w)["extra"].(map[string]interface{})
	assert.Equal(t, membership.MsgNotFound, extra["message"])
	notes := extra["notifications"].([]interface{})
	require.Len(t, notes, 1)
	assert.Equal(t, accessqr.MsgNotMember, notes[0].(map[string]interface{})["description"])
}

func TestAccessQR_Download(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/access-qr/12345678/download", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-acceso-12345678.png"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "\x89PNG fake", w.Body.String())
}

func TestAccessQR_DownloadFormatError(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/access-qr/12ab/download", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, int32(0), env.lookupCalls.Load())
}

// ==========================
// Operational endpoints
// ==========================

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/ready", nil).Code)

	env.ready = fmt.Errorf("redis ping failed")
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/ready", nil).Code)

	w := env.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodOptions, "/api/v1/reservations", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
}

func TestRequestMetricsRecorded(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/health", nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, env.reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["http.requests"])
	assert.True(t, names["http.request.duration"])
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		agent   string
		session string
		want    string
	}{
		{"session header wins", "10.0.0.1:5000", "Firefox", "abc-123", "abc-123"},
		{"ip and agent without header", "10.0.0.1:5000", "Firefox", "", "10.0.0.1|Firefox"},
		{"same ip other agent", "10.0.0.1:5001", "Safari", "", "10.0.0.1|Safari"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/reservations", nil)
			c.Request.RemoteAddr = tt.remote
			c.Request.Header.Set("User-Agent", tt.agent)
			if tt.session != "" {
				c.Request.Header.Set(SessionHeader, tt.session)
			}
			assert.Equal(t, tt.want, clientKey(c))
		})
	}
}

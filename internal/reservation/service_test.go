package reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/membership"
	"club-la-victoria/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redirectURL = "https://reservas.example.com/turnos"

func setup(t *testing.T, status int, body string) (*Service, membership.Submitter, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := membership.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = time.Second
	verifier := membership.NewService(membership.ServiceDependencies{Logger: logger.NewTestLogger(t)}, cfg)

	svc := NewService(&Config{RedirectURL: redirectURL}, logger.NewTestLogger(t))
	return svc, membership.NewForm("reservation", verifier), &calls
}

func TestReserve_ValidRedirects(t *testing.T) {
	svc, form, calls := setup(t, http.StatusOK, `{ "data": true }`)
	rec := notify.NewRecorder()

	decision, err := svc.Reserve(context.Background(), form, Request{DNI: "12345678", Activity: "Tenis"}, rec)
	require.NoError(t, err)
	assert.Equal(t, "valid", decision.Outcome)
	assert.Equal(t, redirectURL, decision.RedirectURL)
	assert.Empty(t, decision.Message)
	assert.Equal(t, int32(1), calls.Load())

	items := rec.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Reserva iniciada para Tenis. DNI: 12345678", items[0].Title)
	assert.Equal(t, notify.VariantDefault, items[0].Variant)
}

func TestReserve_FormatErrorMakesNoCall(t *testing.T) {
	svc, form, calls := setup(t, http.StatusOK, `true`)
	rec := notify.NewRecorder()

	decision, err := svc.Reserve(context.Background(), form, Request{DNI: "1234", Activity: "Pádel"}, rec)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidMemberID))
	assert.Equal(t, "format_error", decision.Outcome)
	assert.Equal(t, membership.MsgIDTooShort, decision.Message)
	assert.Empty(t, decision.RedirectURL)
	assert.Empty(t, rec.Items())
	assert.Equal(t, int32(0), calls.Load())
}

func TestReserve_NegativeOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    errors.ErrorCode
		wantMessage string
		wantToast   string
	}{
		{"not a member", http.StatusOK, `{}`, errors.ErrCodeMembershipNotFound, membership.MsgNotFound, MsgNotMember},
		{"server down", http.StatusInternalServerError, ``, errors.ErrCodeMembershipCheckFailed, MsgVerifyFailed, membership.MsgNetworkFailure},
		{"malformed", http.StatusOK, `{"data"`, errors.ErrCodeMembershipCheckFailed, MsgVerifyFailed, membership.MsgNetworkFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, form, _ := setup(t, tt.status, tt.body)
			rec := notify.NewRecorder()

			decision, err := svc.Reserve(context.Background(), form, Request{DNI: "12345678", Activity: "Gimnasio"}, rec)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode))
			assert.Empty(t, decision.RedirectURL)
			assert.Equal(t, tt.wantMessage, decision.Message)

			items := rec.Items()
			require.Len(t, items, 1)
			assert.Equal(t, tt.wantToast, items[0].Description)
			assert.Equal(t, notify.VariantDestructive, items[0].Variant)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.NoError(t, (&Config{RedirectURL: redirectURL}).Validate())
}

package membership

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"club-la-victoria/internal/common/errors"
	"club-la-victoria/internal/common/metrics"
)

// Verifier is the contract shared by both call sites.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Result, error)
}

// Submitter is what a call site holds: one form's worth of verification.
type Submitter interface {
	Submit(ctx context.Context, raw string) (*Result, error)
}

// IsBusy reports whether err is the rejection returned while a submission
// is outstanding on the same form.
func IsBusy(err error) bool {
	return errors.HasCode(err, errors.ErrCodeFormBusy)
}

// Form allows at most one in-flight verification. The busy flag is released
// on every exit path, including a panic in the verifier.
type Form struct {
	site     string
	verifier Verifier

	busy    atomic.Bool
	mu      sync.Mutex
	lastErr string
}

func NewForm(site string, verifier Verifier) *Form {
	return &Form{site: site, verifier: verifier}
}

func (f *Form) Submit(ctx context.Context, raw string) (*Result, error) {
	if !f.busy.CompareAndSwap(false, true) {
		return nil, errors.NewFormBusyError()
	}
	gauge := metrics.FormsBusy.WithLabelValues(f.site)
	gauge.Inc()
	defer func() {
		gauge.Dec()
		f.busy.Store(false)
	}()

	start := time.Now()
	result, err := f.verifier.Verify(ctx, raw)

	if err != nil {
		f.setLastError(errors.Normalize(err).Message)
		metrics.MembershipVerifications.WithLabelValues(f.site, "format_error").Inc()
		return nil, err
	}

	metrics.MembershipVerificationDuration.WithLabelValues(f.site).Observe(time.Since(start).Seconds())
	metrics.MembershipVerifications.WithLabelValues(f.site, string(result.Outcome)).Inc()
	f.setLastError(result.Message)
	return result, nil
}

func (f *Form) Busy() bool {
	return f.busy.Load()
}

// LastError is the message shown inline under the input, empty after a
// successful submission.
func (f *Form) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Form) setLastError(msg string) {
	f.mu.Lock()
	f.lastErr = msg
	f.mu.Unlock()
}

// FormSet owns one Form per client key. A form is dropped once no
// submission references it.
type FormSet struct {
	site     string
	verifier Verifier

	mu    sync.Mutex
	forms map[string]*formEntry
}

type formEntry struct {
	form *Form
	refs int
}

func NewFormSet(site string, verifier Verifier) *FormSet {
	return &FormSet{
		site:     site,
		verifier: verifier,
		forms:    make(map[string]*formEntry),
	}
}

// For returns the Submitter bound to key.
func (s *FormSet) For(key string) Submitter {
	return &formHandle{set: s, key: key}
}

// Len reports how many forms are currently held.
func (s *FormSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

func (s *FormSet) acquire(key string) *Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.forms[key]
	if !ok {
		entry = &formEntry{form: NewForm(s.site, s.verifier)}
		s.forms[key] = entry
	}
	entry.refs++
	return entry.form
}

func (s *FormSet) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.forms[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(s.forms, key)
	}
}

type formHandle struct {
	set *FormSet
	key string
}

func (h *formHandle) Submit(ctx context.Context, raw string) (*Result, error) {
	form := h.set.acquire(h.key)
	defer h.set.release(h.key)
	return form.Submit(ctx, raw)
}

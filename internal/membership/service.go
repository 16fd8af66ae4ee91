// Package membership verifies a member national ID against the club's
// membership endpoint and classifies the answer as Valid, Invalid or
// NetworkFailure. What happens next is up to the call site.
package membership

import (
	"context"
	"fmt"
	"net/http"

	"club-la-victoria/internal/common/errors"
	commonhttp "club-la-victoria/internal/common/http"
	"club-la-victoria/internal/common/logger"
	"club-la-victoria/internal/common/metrics"
)

// Getter performs the single lookup request.
type Getter interface {
	Get(ctx context.Context, url, accept string) (*commonhttp.Response, error)
}

type ServiceDependencies struct {
	HTTPClient Getter
	Cache      Cache // optional
	Logger     logger.Logger
}

type Service struct {
	config *Config
	client Getter
	cache  Cache
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	client := deps.HTTPClient
	if client == nil {
		client = commonhttp.NewClient(config.Timeout)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: config,
		client: client,
		cache:  deps.Cache,
		logger: log.WithFields(map[string]interface{}{"component": "membership"}),
	}
}

// Verify validates raw locally and, only if it is well formed, performs one
// lookup. A format error is returned as err with a nil Result; every other
// path returns a Result and a nil error.
func (s *Service) Verify(ctx context.Context, raw string) (*Result, error) {
	id, err := ValidateID(raw)
	if err != nil {
		return nil, err
	}

	if result, ok := s.fromCache(ctx, id); ok {
		return result, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	resp, err := s.client.Get(lookupCtx, s.config.LookupURL(id), "application/json")
	if err != nil {
		s.logger.Warn("membership lookup failed", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return networkFailure(id, ShapeNone, errors.NewMembershipCheckFailedError(MsgNetworkFailure, err)), nil
	}

	result := s.classify(id, resp)

	s.logger.Info("membership verified", map[string]interface{}{
		"id":      id,
		"status":  resp.StatusCode,
		"outcome": string(result.Outcome),
		"shape":   string(result.Shape),
	})

	s.toCache(ctx, result)
	return result, nil
}

func (s *Service) classify(id string, resp *commonhttp.Response) *Result {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return invalidResult(id, ShapeNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		return networkFailure(id, ShapeNone, errors.NewMembershipCheckFailedError(
			MsgNetworkFailure, fmt.Errorf("upstream status %d", resp.StatusCode)))
	}

	shape, err := ParsePayload(resp.Body)
	switch {
	case err != nil:
		return networkFailure(id, shape, errors.NewMembershipCheckFailedError(MsgNetworkFailure, err))
	case shape.Positive():
		return validResult(id, shape)
	case shape == ShapeUnrecognized && s.config.StrictShapes:
		return networkFailure(id, shape, errors.NewMembershipUnexpectedShapeError(
			MsgNetworkFailure, fmt.Sprintf("unexpected payload: %.64s", resp.Body)))
	default:
		return invalidResult(id, shape)
	}
}

func (s *Service) fromCache(ctx context.Context, id string) (*Result, bool) {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return nil, false
	}
	outcome, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("membership cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	if !ok {
		return nil, false
	}

	metrics.MembershipCacheHits.WithLabelValues(string(outcome)).Inc()

	var result *Result
	if outcome == OutcomeValid {
		result = validResult(id, ShapeCached)
	} else {
		result = invalidResult(id, ShapeCached)
	}
	result.Cached = true
	return result, true
}

func (s *Service) toCache(ctx context.Context, result *Result) {
	if s.cache == nil || s.config.CacheTTL <= 0 || result.Outcome == OutcomeNetworkFailure {
		return
	}
	if err := s.cache.Set(ctx, result.ID, result.Outcome); err != nil {
		s.logger.Warn("membership cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

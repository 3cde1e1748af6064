package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/aio-strategy/internal/application"
	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
	"github.com/bryanwahyu/aio-strategy/internal/infra/ai/prompt"
)

const (
	DefaultTimeout        = 60 * time.Second
	DefaultPersistTimeout = 10 * time.Second

	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// Metrics receives pipeline outcomes. Optional.
type Metrics interface {
	AnalysisSucceeded()
	AnalysisFailed()
	PersistFailed()
}

// Service implements the analysis use-cases.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	Store      domain.Repository
	Completion domain.CompletionService
	Verifier   domain.IdentityVerifier
	Clock      application.Clock
	Log        logrus.FieldLogger
	Metrics    Metrics

	// Timeout bounds the completion call. Zero means DefaultTimeout.
	Timeout time.Duration
	// PersistTimeout bounds the single best-effort Save. Zero means DefaultPersistTimeout.
	PersistTimeout time.Duration
	// NewID overrides record id generation in tests.
	NewID func(now time.Time) string
}

// Submit validates, authenticates, generates and (best-effort) persists one analysis.
func (s *Service) Submit(ctx context.Context, in domain.Input, bearerToken string) (*domain.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	caller, err := s.Authenticate(ctx, bearerToken)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, prompt.Build(in))
	if err != nil {
		s.failed()
		s.log().WithError(err).WithField("owner", caller.Subject).Error("analysis generation failed")
		return nil, err
	}

	now := s.now()
	rec := &domain.Record{
		ID:         s.newID(now),
		Input:      in,
		Result:     text,
		CreatedAt:  now,
		OwnerID:    caller.Subject,
		OwnerEmail: caller.Email,
	}

	s.persistBestEffort(ctx, rec)

	if s.Metrics != nil {
		s.Metrics.AnalysisSucceeded()
	}
	return rec, nil
}

func (s *Service) generate(ctx context.Context, p string) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.log().WithField("prompt_chars", len(p)).Debug("calling completion service")
	text, err := s.Completion.Generate(cctx, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %w", domain.ErrTimeout, timeout, err)
		}
		return "", err
	}
	if text == "" {
		return "", domain.UpstreamMessage("no text generated")
	}
	return text, nil
}

// persistBestEffort makes exactly one Save call. Failures are logged and
// counted but never reach the caller: delivery does not depend on storage.
// It reports whether the record was stored.
func (s *Service) persistBestEffort(ctx context.Context, rec *domain.Record) bool {
	if s.Store == nil {
		return false
	}
	timeout := s.PersistTimeout
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	// detached from request cancellation so a client disconnect does not abort the write
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.Store.Save(pctx, rec); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		s.log().WithError(err).WithField("id", rec.ID).Warn("failed to save analysis (continuing anyway)")
		if s.Metrics != nil {
			s.Metrics.PersistFailed()
		}
		return false
	}
	s.log().WithField("id", rec.ID).Info("analysis saved")
	return true
}

// Authenticate resolves a bearer token to a caller or returns ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, bearerToken string) (*domain.Caller, error) {
	if bearerToken == "" || s.Verifier == nil {
		return nil, domain.ErrUnauthorized
	}
	caller := s.Verifier.Verify(ctx, bearerToken)
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	return caller, nil
}

// Get fetches one record by id. Any caller holding the id may read it.
func (s *Service) Get(ctx context.Context, id string) (*domain.Record, error) {
	if s.Store == nil {
		return nil, domain.ErrNotFound
	}
	rec, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// History lists a page of the caller's own records, newest first.
func (s *Service) History(ctx context.Context, caller *domain.Caller, limit, offset int) ([]*domain.Record, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if s.Store == nil {
		return []*domain.Record{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.Store.ListByOwner(ctx, caller.Subject, ClampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses for %s: %w", caller.Subject, err)
	}
	if list == nil {
		list = []*domain.Record{}
	}
	return list, nil
}

// ClampLimit applies the history default and ceiling.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

func (s *Service) failed() {
	if s.Metrics != nil {
		s.Metrics.AnalysisFailed()
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) newID(now time.Time) string {
	if s.NewID != nil {
		return s.NewID(now)
	}
	return application.NewRecordID(now)
}

func (s *Service) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/model"
	"github.com/formpost/formpost/internal/notify"
)

// NotifyError reports a stored submission whose notification failed.
type NotifyError struct {
	SubmissionID string
	Err          error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("%s: %v", ErrNotifyFailed, e.Err)
}

// Is matches ErrNotifyFailed.
func (e *NotifyError) Is(target error) bool { return target == ErrNotifyFailed }

func (e *NotifyError) Unwrap() error { return e.Err }

// SubmissionService ingests and lists form submissions.
type SubmissionService struct {
	tenants  *TenantResolver
	store    SubmissionStore
	notifier notify.Notifier
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(tenants *TenantResolver, store SubmissionStore, notifier notify.Notifier, recorder metrics.Recorder, logger *slog.Logger) *SubmissionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		tenants:  tenants,
		store:    store,
		notifier: notifier,
		metrics:  recorder,
		logger:   logger.With("component", "ingest"),
		now:      time.Now,
	}
}

// Submit stores a submission and notifies its owner. The input holds the
// site key, an optional createdAt and any other form fields.
//
// The submission is stored before the notification is attempted; a failed
// notification returns a *NotifyError carrying the stored submission id.
func (s *SubmissionService) Submit(ctx context.Context, input model.Fields) (*model.Submission, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveIngestDuration(time.Since(start))
	}()

	siteKey, ok := input[model.FieldSiteKey].Str()
	if !ok || siteKey == "" {
		s.metrics.IncSubmissionRejected(metrics.RejectValidation)
		return nil, ErrMissingSiteKey
	}

	createdAt, err := parseCreatedAt(input[model.FieldCreatedAt], s.now)
	if err != nil {
		s.metrics.IncSubmissionRejected(metrics.RejectValidation)
		return nil, err
	}

	owner, err := s.tenants.Resolve(ctx, siteKey)
	if err != nil {
		if errors.Is(err, ErrSiteKeyNotFound) {
			s.metrics.IncSubmissionRejected(metrics.RejectUnknownSiteKey)
		}
		return nil, err
	}

	fields := input.Clone()
	delete(fields, model.FieldSiteKey)
	delete(fields, model.FieldCreatedAt)

	sub := &model.Submission{
		ID:        ulid.Make().String(),
		SiteKey:   siteKey,
		CreatedAt: createdAt,
		Fields:    fields,
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		s.metrics.IncSubmissionRejected(metrics.RejectStoreError)
		return nil, err
	}
	s.metrics.IncSubmissionAccepted()

	if err := s.notifier.Send(ctx, owner, sub.NotificationFields()); err != nil {
		s.metrics.IncNotificationSent(metrics.StatusFailed)
		s.logger.ErrorContext(ctx, "notification failed",
			"submission_id", sub.ID,
			"owner_id", owner.ID,
			"error", err,
		)
		return sub, &NotifyError{SubmissionID: sub.ID, Err: err}
	}
	s.metrics.IncNotificationSent(metrics.StatusSuccess)

	return sub, nil
}

// List returns the submissions of siteKey, newest first.
func (s *SubmissionService) List(ctx context.Context, siteKey string) ([]*model.Submission, error) {
	if siteKey == "" {
		return nil, ErrMissingSiteKey
	}
	return s.store.ListSubmissions(ctx, siteKey)
}

// parseCreatedAt accepts RFC 3339 text, a YYYY-MM-DD date (UTC midnight) or
// Unix milliseconds. Missing, null, empty, zero and false values default to now.
func parseCreatedAt(v model.Value, now func() time.Time) (time.Time, error) {
	if isBlank(v) {
		return now().UTC(), nil
	}

	switch v.Kind() {
	case model.KindTime:
		t, _ := v.Time()
		return t, nil
	case model.KindString:
		str, _ := v.Str()
		if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", str); err == nil {
			return t, nil
		}
		return time.Time{}, ErrInvalidCreatedAt
	case model.KindNumber:
		ms, _ := v.Number()
		if math.IsNaN(ms) || math.IsInf(ms, 0) || ms != math.Trunc(ms) {
			return time.Time{}, ErrInvalidCreatedAt
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	default:
		return time.Time{}, ErrInvalidCreatedAt
	}
}

// isBlank reports whether a form left the value unset.
func isBlank(v model.Value) bool {
	switch v.Kind() {
	case model.KindNull:
		return true
	case model.KindString:
		s, _ := v.Str()
		return s == ""
	case model.KindNumber:
		n, _ := v.Number()
		return n == 0
	case model.KindBool:
		b, _ := v.Bool()
		return !b
	default:
		return false
	}
}

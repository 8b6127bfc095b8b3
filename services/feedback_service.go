package services

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/NomadCrew/feedback-backend/errors"
	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/NomadCrew/feedback-backend/validation"
	"go.uber.org/zap"
)

// FeedbackService runs the request flow shared by every feedback route:
// initialize storage, validate, perform the store operation, record metrics.
// All errors it returns are *apperrors.AppError.
type FeedbackService struct {
	store    store.FeedbackStore
	policy   validation.Policy
	metrics  *FeedbackMetrics
	notifier Notifier
	log      *zap.SugaredLogger
}

func NewFeedbackService(st store.FeedbackStore, policy validation.Policy, metrics *FeedbackMetrics, notifier Notifier) *FeedbackService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &FeedbackService{
		store:    st,
		policy:   policy,
		metrics:  metrics,
		notifier: notifier,
		log:      logger.GetLogger(),
	}
}

// List returns every stored entry.
func (s *FeedbackService) List(ctx context.Context) ([]types.Feedback, error) {
	if err := s.store.Initialize(ctx); err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	var feedbacks []types.Feedback
	err := s.observe("list", func() error {
		var err error
		feedbacks, err = s.store.ListFeedback(ctx)
		return err
	})
	if err != nil {
		s.log.Errorw("Error fetching feedbacks", "error", err)
		return nil, apperrors.InternalServerError("Failed to fetch feedbacks", err)
	}
	if feedbacks == nil {
		feedbacks = []types.Feedback{}
	}
	return feedbacks, nil
}

// Submit validates sub and stores it as a new entry.
func (s *FeedbackService) Submit(ctx context.Context, sub types.FeedbackSubmission) (*types.Feedback, error) {
	if err := s.store.Initialize(ctx); err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	rating, verr := validation.ValidateSubmission(sub, s.policy)
	if verr != nil {
		s.metrics.validationFailure.WithLabelValues(verr.Code).Inc()
		return nil, verr
	}

	var created *types.Feedback
	err := s.observe("create", func() error {
		var err error
		created, err = s.store.CreateFeedback(ctx, &types.Feedback{
			FullName: sub.FullName,
			Email:    sub.Email,
			Message:  sub.Message,
			Rating:   rating,
		})
		return err
	})
	if err != nil {
		s.log.Errorw("Error saving feedback", "error", err)
		return nil, apperrors.InternalServerError("Failed to save feedback", err)
	}

	s.metrics.created.Inc()
	s.log.Infow("Feedback stored",
		"feedback_id", created.ID.String(),
		"submitter", logger.MaskEmail(created.Email),
		"rating", created.Rating)

	if err := s.notifier.FeedbackReceived(ctx, *created); err != nil {
		s.log.Warnw("Failed to send feedback notification", "feedback_id", created.ID.String(), "error", err)
	}
	return created, nil
}

// Delete removes the entry with id. Storage is not initialized first, so a
// missing data directory surfaces as "No feedback data found".
func (s *FeedbackService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.ValidationFailed(apperrors.ErrorTypeMissing, "Feedback ID is required")
	}

	err := s.observe("delete", func() error {
		return s.store.DeleteFeedback(ctx, id)
	})
	switch {
	case err == nil:
		s.metrics.deleted.Inc()
		s.log.Infow("Feedback deleted", "feedback_id", id)
		return nil
	case errors.Is(err, store.ErrStorageMissing):
		return apperrors.NotFound("No feedback data found")
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFound("Feedback not found")
	default:
		s.log.Errorw("Error deleting feedback", "feedback_id", id, "error", err)
		return apperrors.InternalServerError("Failed to delete feedback", err)
	}
}

func (s *FeedbackService) observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.storeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrStorageMissing) {
		s.metrics.storeErrors.WithLabelValues(operation).Inc()
	}
	return err
}

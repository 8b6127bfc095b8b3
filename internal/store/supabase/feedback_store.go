// Package supabase stores feedback in a Supabase table through the PostgREST API.
// It is the server-side counterpart of the browser client's hosted collection.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// DefaultTable is the collection the browser client writes to.
const DefaultTable = "feedbacks"

const (
	returnRepresentation = "representation"
	// pingID never matches a row; selecting it checks reachability cheaply.
	pingID = "00000000-0000-0000-0000-000000000000"
)

var _ store.FeedbackStore = (*FeedbackStore)(nil)

type feedbackRow struct {
	ID        types.FeedbackID `json:"id"`
	FullName  string           `json:"full_name"`
	Email     string           `json:"email"`
	Message   string           `json:"message"`
	Rating    int              `json:"rating"`
	CreatedAt string           `json:"created_at"`
}

type insertRow struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Rating   int    `json:"rating"`
}

// FeedbackStore implements store.FeedbackStore on a Supabase table.
type FeedbackStore struct {
	client *supa.Client
	table  string
	log    *zap.SugaredLogger
}

// NewClient builds a Supabase client for url authenticated with key.
func NewClient(url, key string) (*supa.Client, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("%w: supabase url and key are required", store.ErrStorageUnavailable)
	}
	client, err := supa.NewClient(url, key, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: supabase client: %v", store.ErrStorageUnavailable, err)
	}
	return client, nil
}

// NewFeedbackStore returns a store writing to table (DefaultTable when empty).
func NewFeedbackStore(client *supa.Client, table string) *FeedbackStore {
	if table == "" {
		table = DefaultTable
	}
	return &FeedbackStore{
		client: client,
		table:  table,
		log:    logger.GetLogger(),
	}
}

// Initialize only checks the client; the table is provisioned in Supabase itself.
func (s *FeedbackStore) Initialize(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("%w: supabase client not configured", store.ErrStorageUnavailable)
	}
	return nil
}

// ListFeedback returns every row ordered by created_at.
func (s *FeedbackStore) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	var rows []feedbackRow
	if _, err := s.client.From(s.table).Select("*", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to fetch feedbacks: %w", err)
	}

	feedbacks := make([]types.Feedback, 0, len(rows))
	for _, row := range rows {
		feedbacks = append(feedbacks, row.toFeedback())
	}
	sort.SliceStable(feedbacks, func(i, j int) bool {
		return feedbacks[i].CreatedAt < feedbacks[j].CreatedAt
	})
	s.log.Debugw("Fetched feedbacks from Supabase", "count", len(feedbacks))
	return feedbacks, nil
}

// CreateFeedback inserts fb; Supabase assigns id and created_at.
func (s *FeedbackStore) CreateFeedback(ctx context.Context, fb *types.Feedback) (*types.Feedback, error) {
	row := insertRow{
		FullName: fb.FullName,
		Email:    fb.Email,
		Message:  fb.Message,
		Rating:   fb.Rating,
	}

	var created []feedbackRow
	if _, err := s.client.From(s.table).Insert(row, false, "", returnRepresentation, "").ExecuteTo(&created); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStorageWrite, err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("%w: insert returned no row", store.ErrStorageWrite)
	}

	result := created[0].toFeedback()
	return &result, nil
}

// DeleteFeedback removes the row with the given id. An id matching no row is
// reported as store.ErrNotFound.
func (s *FeedbackStore) DeleteFeedback(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("feedback id is required")
	}

	var deleted []feedbackRow
	if _, err := s.client.From(s.table).Delete(returnRepresentation, "").Eq("id", id).ExecuteTo(&deleted); err != nil {
		s.log.Errorw("Supabase delete failed", "id", id, "error", err)
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if len(deleted) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ping issues a select that matches nothing.
func (s *FeedbackStore) Ping(ctx context.Context) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	var rows []feedbackRow
	if _, err := s.client.From(s.table).Select("id", "", false).Eq("id", pingID).ExecuteTo(&rows); err != nil {
		return fmt.Errorf("supabase unreachable: %w", err)
	}
	return nil
}

func (r feedbackRow) toFeedback() types.Feedback {
	return types.Feedback{
		ID:        r.ID,
		FullName:  r.FullName,
		Email:     r.Email,
		Message:   r.Message,
		Rating:    r.Rating,
		CreatedAt: normalizeTimestamp(r.CreatedAt),
	}
}

// normalizeTimestamp converts PostgREST timestamps (microseconds, +00:00 offset)
// to the created_at layout. Unparsable values pass through unchanged.
func normalizeTimestamp(raw string) string {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return types.FormatTimestamp(t)
}

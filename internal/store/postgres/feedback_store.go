package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBPool is the subset of *pgxpool.Pool used by the store. pgxmock satisfies it.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Ensure FeedbackStore implements store.FeedbackStore
var _ store.FeedbackStore = (*FeedbackStore)(nil)

const createTableSQL = `CREATE TABLE IF NOT EXISTS feedbacks (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	full_name text NOT NULL,
	email text NOT NULL,
	message text NOT NULL,
	rating smallint NOT NULL DEFAULT 0,
	created_at timestamptz NOT NULL DEFAULT now()
)`

const (
	listSQL   = `SELECT id::text, full_name, email, message, rating, created_at FROM feedbacks ORDER BY created_at, id`
	insertSQL = `INSERT INTO feedbacks (full_name, email, message, rating) VALUES ($1, $2, $3, $4) RETURNING id::text, created_at`
	deleteSQL = `DELETE FROM feedbacks WHERE id::text = $1`
)

// FeedbackStore persists feedback in a Postgres table. Ids and created_at come
// from column defaults, so the database clock is authoritative.
type FeedbackStore struct {
	pool DBPool
	log  *zap.SugaredLogger

	mu          sync.Mutex
	initialized bool
}

// NewFeedbackStore creates a new feedback store backed by pool.
func NewFeedbackStore(pool DBPool) *FeedbackStore {
	return &FeedbackStore{
		pool: pool,
		log:  logger.GetLogger(),
	}
}

// Initialize creates the feedbacks table once per process.
func (s *FeedbackStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		s.log.Errorw("Failed to create feedbacks table", "error", err)
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	s.initialized = true
	return nil
}

// ListFeedback returns all feedback ordered by creation time.
func (s *FeedbackStore) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	rows, err := s.pool.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	feedbacks := []types.Feedback{}
	for rows.Next() {
		var (
			fb        types.Feedback
			id        string
			rating    int
			createdAt time.Time
		)
		if err := rows.Scan(&id, &fb.FullName, &fb.Email, &fb.Message, &rating, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		fb.ID = types.FeedbackID(id)
		fb.Rating = rating
		fb.CreatedAt = types.FormatTimestamp(createdAt)
		feedbacks = append(feedbacks, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return feedbacks, nil
}

// CreateFeedback inserts a new feedback entry and returns it with the generated id.
func (s *FeedbackStore) CreateFeedback(ctx context.Context, fb *types.Feedback) (*types.Feedback, error) {
	var (
		id        string
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx, insertSQL, fb.FullName, fb.Email, fb.Message, fb.Rating).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStorageWrite, err)
	}

	created := *fb
	created.ID = types.FeedbackID(id)
	created.CreatedAt = types.FormatTimestamp(createdAt)
	return &created, nil
}

// DeleteFeedback removes the feedback with the given id.
func (s *FeedbackStore) DeleteFeedback(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, deleteSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ping checks database connectivity.
func (s *FeedbackStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Package filestore keeps the full feedback record set as one JSON array in a
// single file. Every mutation is a read-modify-write of the whole file. Without
// WithWriteLock two concurrent writers race and the last write wins.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultDirName is the data directory created under the user's home directory.
	DefaultDirName = "feedback-data"
	// DefaultFileName is the backing file inside the data directory.
	DefaultFileName = "feedbacks.json"

	dirPerm  = 0o755
	filePerm = 0o644
)

var _ store.FeedbackStore = (*Store)(nil)

// Store is the file-backed record store.
type Store struct {
	dir   string
	path  string
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string
	mu    *sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithFileName overrides the backing file name inside the data directory.
func WithFileName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.path = filepath.Join(s.dir, name)
		}
	}
}

// WithClock sets the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the generator used for new record ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// WithWriteLock serializes read-modify-write cycles within this process.
// Other processes writing the same file are not covered.
func WithWriteLock() Option {
	return func(s *Store) {
		s.mu = &sync.Mutex{}
	}
}

// DefaultDir returns $HOME/feedback-data.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// New returns a Store rooted at dir. Nothing is touched on disk until Initialize.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:   dir,
		path:  filepath.Join(dir, DefaultFileName),
		log:   logger.GetLogger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Initialize creates the data directory and, when absent, a backing file holding [].
func (s *Store) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		s.log.Errorw("Failed to create feedback data directory", "dir", s.dir, "error", err)
		return fmt.Errorf("%w: create %s: %v", store.ErrStorageUnavailable, s.dir, err)
	}

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", store.ErrStorageUnavailable, s.path, err)
	}

	if err := s.writeFile(nil); err != nil {
		s.log.Errorw("Failed to create feedback data file", "path", s.path, "error", err)
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}
	s.log.Infow("Initialized feedback data file", "path", s.path)
	return nil
}

// Reset overwrites the backing file with an empty array, creating the directory if needed.
func (s *Store) Reset(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create %s: %v", store.ErrStorageUnavailable, s.dir, err)
	}
	s.lock()
	defer s.unlock()
	return s.writeFile(nil)
}

// ReadAll returns every record in the backing file. A missing file, or content
// that is not a JSON array, is reset to [] and reported as empty. Inside a valid
// array, elements that are not objects are skipped; fields of the wrong type are
// kept on the record (types.Feedback.Extra) so rewriting the file preserves them.
func (s *Store) ReadAll(ctx context.Context) ([]types.Feedback, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warnw("Error reading feedbacks file, resetting", "path", s.path, "error", err)
		return s.heal()
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		s.log.Warnw("Feedbacks file is corrupted, resetting", "path", s.path, "error", err)
		return s.heal()
	}
	if elements == nil {
		s.log.Warnw("Feedbacks file does not hold an array, resetting", "path", s.path)
		return s.heal()
	}

	records := make([]types.Feedback, 0, len(elements))
	for i, raw := range elements {
		var record types.Feedback
		if err := json.Unmarshal(raw, &record); err != nil {
			s.log.Warnw("Skipping malformed feedback record", "path", s.path, "index", i, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) heal() ([]types.Feedback, error) {
	if err := s.writeFile(nil); err != nil {
		return nil, fmt.Errorf("%w: reset %s: %v", store.ErrStorageWrite, s.path, err)
	}
	return []types.Feedback{}, nil
}

// WriteAll replaces the backing file content with records.
func (s *Store) WriteAll(ctx context.Context, records []types.Feedback) error {
	s.lock()
	defer s.unlock()
	return s.writeAll(records)
}

func (s *Store) writeAll(records []types.Feedback) error {
	if err := s.writeFile(records); err != nil {
		s.log.Errorw("Error writing feedbacks file", "path", s.path, "error", err)
		return fmt.Errorf("%w: %v", store.ErrStorageWrite, err)
	}
	s.log.Debugw("Feedback data saved", "path", s.path, "count", len(records))
	return nil
}

// Append adds record to the end of the record set.
func (s *Store) Append(ctx context.Context, record types.Feedback) error {
	s.lock()
	defer s.unlock()

	records, err := s.ReadAll(ctx)
	if err != nil {
		return err
	}
	return s.writeAll(append(records, record))
}

// Remove deletes every record whose id equals id and reports whether any was
// removed. It returns store.ErrStorageMissing when the data directory does not exist.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	if _, err := os.Stat(s.dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, store.ErrStorageMissing
		}
		return false, fmt.Errorf("%w: stat %s: %v", store.ErrStorageUnavailable, s.dir, err)
	}

	s.lock()
	defer s.unlock()

	records, err := s.ReadAll(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]types.Feedback, 0, len(records))
	for _, r := range records {
		if r.ID.String() != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	return true, s.writeAll(kept)
}

// ListFeedback implements store.FeedbackStore.
func (s *Store) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	return s.ReadAll(ctx)
}

// CreateFeedback assigns an id and created_at and appends the record.
func (s *Store) CreateFeedback(ctx context.Context, fb *types.Feedback) (*types.Feedback, error) {
	record := *fb
	record.ID = types.FeedbackID(s.newID())
	record.CreatedAt = types.FormatTimestamp(s.now())

	if err := s.Append(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteFeedback implements store.FeedbackStore.
func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	found, err := s.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return store.ErrNotFound
	}
	return nil
}

// Ping checks that the backing file can be initialized.
func (s *Store) Ping(ctx context.Context) error {
	return s.Initialize(ctx)
}

func (s *Store) writeFile(records []types.Feedback) error {
	data, err := encode(records)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, filePerm)
}

func (s *Store) lock() {
	if s.mu != nil {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if s.mu != nil {
		s.mu.Unlock()
	}
}

// encode renders records as a 2-space indented array without HTML escaping and
// without a trailing newline.
func encode(records []types.Feedback) ([]byte, error) {
	if records == nil {
		records = []types.Feedback{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode feedbacks: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

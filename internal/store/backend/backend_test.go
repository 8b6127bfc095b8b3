package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/NomadCrew/feedback-backend/internal/store"
	"github.com/NomadCrew/feedback-backend/internal/store/filestore"
	"github.com/NomadCrew/feedback-backend/internal/store/supabase"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestOpen_File(t *testing.T) {
	dir := t.TempDir()
	opened, err := Open(context.Background(), &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendFile, DataDir: dir, FileName: "custom.json", SerializeWrites: true},
	})
	require.NoError(t, err)
	defer opened.Close()

	assert.Equal(t, config.BackendFile, opened.Backend)
	fs, ok := opened.Store.(*filestore.Store)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "custom.json"), fs.Path())
}

func TestOpen_Supabase(t *testing.T) {
	opened, err := Open(context.Background(), &config.Config{
		Storage:  config.StorageConfig{Backend: config.BackendSupabase},
		Supabase: config.SupabaseConfig{URL: "https://project.supabase.co", ServiceKey: "service-key"},
	})
	require.NoError(t, err)
	_, ok := opened.Store.(*supabase.FeedbackStore)
	assert.True(t, ok)

	_, err = Open(context.Background(), &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendSupabase},
	})
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: "mongo"}})
	assert.Error(t, err)
}

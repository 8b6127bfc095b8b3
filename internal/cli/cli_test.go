package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/NomadCrew/feedback-backend/internal/store/filestore"
	"github.com/NomadCrew/feedback-backend/logger"
	"github.com/NomadCrew/feedback-backend/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	logger.IsTest = true
}

func testOptions(t *testing.T, format string) (*RootOptions, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "feedback-data")
	cfg := &config.Config{
		Storage: config.StorageConfig{
			Backend:  config.BackendFile,
			DataDir:  dir,
			FileName: "feedbacks.json",
		},
		Backup: config.BackupConfig{Region: "auto"},
	}
	return &RootOptions{
		Format:     format,
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
	}, dir
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	root := NewRootCommand()
	_, err := execute(root, "--format", "xml", "read")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"init", "read", "seed", "list", "delete", "backup"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestInitResetsDataFile(t *testing.T) {
	opts, dir := testOptions(t, "json")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "feedbacks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x"}]`), 0o644))

	out, err := execute(NewInitCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestReadMissingFile(t *testing.T) {
	opts, _ := testOptions(t, "json")

	_, err := execute(NewReadCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestReadDoesNotModifyFile(t *testing.T) {
	opts, dir := testOptions(t, "json")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "feedbacks.json")
	corrupted := "this is not json"
	require.NoError(t, os.WriteFile(path, []byte(corrupted), 0o644))

	out, err := execute(NewReadCommand(opts))
	require.NoError(t, err)
	assert.Equal(t, corrupted+"\n", out)

	opts.Format = "yaml"
	_, err = execute(NewReadCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, corrupted, string(data))
}

func TestReadPrintsStoredBytes(t *testing.T) {
	opts, dir := testOptions(t, "json")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := `[{"id":"a","full_name":42,"email":"a@x.com","message":"m","created_at":"t","source":"web"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feedbacks.json"), []byte(content), 0o644))

	out, err := execute(NewReadCommand(opts))
	require.NoError(t, err)
	assert.Equal(t, content+"\n", out)
}

func TestSeedThenRead(t *testing.T) {
	opts, _ := testOptions(t, "json")

	out, err := execute(NewSeedCommand(opts), "--count", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 3 entries")

	out, err = execute(NewReadCommand(opts))
	require.NoError(t, err)

	var records []types.Feedback
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "Test User", records[0].FullName)
	assert.Equal(t, "Another User", records[1].FullName)
	assert.Equal(t, "Test User 3", records[2].FullName)
	for _, r := range records {
		_, parseErr := uuid.Parse(r.ID.String())
		assert.NoError(t, parseErr, "seeded ids are uuids")
		_, parseErr = time.Parse(types.TimestampLayout, r.CreatedAt)
		assert.NoError(t, parseErr)
	}
}

func TestSeedResetsCorruptedFile(t *testing.T) {
	opts, dir := testOptions(t, "json")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feedbacks.json"), []byte(`{"not":"an array"}`), 0o644))

	out, err := execute(NewSeedCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "(2 total)")
}

func TestSeedRejectsBadCount(t *testing.T) {
	opts, _ := testOptions(t, "json")

	_, err := execute(NewSeedCommand(opts), "--count", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReadYAML(t *testing.T) {
	opts, _ := testOptions(t, "yaml")

	_, err := execute(NewSeedCommand(opts), "--count", "1")
	require.NoError(t, err)

	out, err := execute(NewReadCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "full_name: Test User")

	var records []types.Feedback
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "test@example.com", records[0].Email)
}

func seedStore(t *testing.T, dir string) *types.Feedback {
	t.Helper()
	ctx := context.Background()
	st := filestore.New(dir)
	require.NoError(t, st.Initialize(ctx))
	created, err := st.CreateFeedback(ctx, &types.Feedback{FullName: "Ann", Email: "ann@x.com", Message: "hi", Rating: 4})
	require.NoError(t, err)
	return created
}

func TestListUsesConfiguredStore(t *testing.T) {
	opts, dir := testOptions(t, "json")
	created := seedStore(t, dir)

	out, err := execute(NewListCommand(opts))
	require.NoError(t, err)

	var records []types.Feedback
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, *created, records[0])
}

func TestListEmptyStore(t *testing.T) {
	opts, _ := testOptions(t, "json")

	out, err := execute(NewListCommand(opts))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestDelete(t *testing.T) {
	opts, dir := testOptions(t, "json")
	created := seedStore(t, dir)

	out, err := execute(NewDeleteCommand(opts), created.ID.String())
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Feedback deleted successfully"}`, out)

	_, err = execute(NewDeleteCommand(opts), created.ID.String())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestDeleteWithoutDataDir(t *testing.T) {
	opts, _ := testOptions(t, "json")

	_, err := execute(NewDeleteCommand(opts), "abc")
	require.Error(t, err)
	assert.Equal(t, "no feedback data found", err.Error())
}

func TestDeleteRequiresID(t *testing.T) {
	opts, _ := testOptions(t, "json")

	_, err := execute(NewDeleteCommand(opts))
	assert.Error(t, err)
}

func TestConfigLoadFailure(t *testing.T) {
	opts := &RootOptions{
		Format:     "json",
		LoadConfig: func() (*config.Config, error) { return nil, errors.New("boom") },
	}

	_, err := execute(NewListCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDataDirFlagOverridesConfig(t *testing.T) {
	opts, _ := testOptions(t, "json")
	override := t.TempDir()
	opts.DataDir = override

	_, err := execute(NewInitCommand(opts))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(override, "feedbacks.json"))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func stubPutter(t *testing.T, fake *fakePutter) {
	t.Helper()
	orig := newObjectPutter
	newObjectPutter = func(ctx context.Context, cfg *config.BackupConfig) (objectPutter, error) {
		return fake, nil
	}
	t.Cleanup(func() { newObjectPutter = orig })
}

func TestBackupUploadsDataFile(t *testing.T) {
	opts, dir := testOptions(t, "json")
	seedStore(t, dir)
	fake := &fakePutter{}
	stubPutter(t, fake)

	out, err := execute(NewBackupCommand(opts), "--bucket", "feedback-backups", "--key", "daily.json")
	require.NoError(t, err)
	assert.Contains(t, out, "s3://feedback-backups/daily.json")

	require.NotNil(t, fake.input)
	assert.Equal(t, "feedback-backups", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "daily.json", aws.ToString(fake.input.Key))
	assert.Equal(t, "application/json", aws.ToString(fake.input.ContentType))

	onDisk, err := os.ReadFile(filepath.Join(dir, "feedbacks.json"))
	require.NoError(t, err)
	assert.Equal(t, onDisk, fake.body)
}

func TestBackupRequiresBucket(t *testing.T) {
	opts, dir := testOptions(t, "json")
	seedStore(t, dir)

	_, err := execute(NewBackupCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBackupDryRun(t *testing.T) {
	opts, dir := testOptions(t, "json")
	seedStore(t, dir)
	fake := &fakePutter{}
	stubPutter(t, fake)

	out, err := execute(NewBackupCommand(opts), "--bucket", "b", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[dry-run]")
	assert.Nil(t, fake.input)
}

func TestBackupUploadFailure(t *testing.T) {
	opts, dir := testOptions(t, "json")
	seedStore(t, dir)
	stubPutter(t, &fakePutter{err: errors.New("access denied")})

	_, err := execute(NewBackupCommand(opts), "--bucket", "b")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "access denied")
}

func TestDefaultBackupKey(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "feedbacks-20240501T103000Z.json", defaultBackupKey(at))
}

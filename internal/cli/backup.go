package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/NomadCrew/feedback-backend/config"
	"github.com/NomadCrew/feedback-backend/internal/store/backend"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/cobra"
)

// objectPutter is the part of *s3.Client used by backup.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newObjectPutter builds the S3 client; tests replace it.
var newObjectPutter = func(ctx context.Context, cfg *config.BackupConfig) (objectPutter, error) {
	return newS3Client(ctx, cfg)
}

type backupOptions struct {
	bucket string
	key    string
	dryRun bool
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &backupOptions{}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload the data file to S3-compatible storage",
		Long: `Upload the feedback data file to an S3-compatible bucket (AWS S3,
Cloudflare R2, MinIO). Connection settings come from BACKUP_ENDPOINT,
BACKUP_REGION, BACKUP_ACCESS_KEY_ID and BACKUP_SECRET_ACCESS_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(rootOpts, opts, cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "target bucket (defaults to BACKUP_BUCKET)")
	cmd.Flags().StringVar(&opts.key, "key", "", "object key (defaults to feedbacks-<UTC timestamp>.json)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print what would be uploaded without uploading")

	return cmd
}

func runBackup(rootOpts *RootOptions, opts *backupOptions, cmd *cobra.Command) error {
	cfg, err := rootOpts.config()
	if err != nil {
		return err
	}

	bucket := opts.bucket
	if bucket == "" {
		bucket = cfg.Backup.Bucket
	}
	if bucket == "" {
		return NewExitError(ExitCommandError, "--bucket or BACKUP_BUCKET is required")
	}
	key := opts.key
	if key == "" {
		key = defaultBackupKey(time.Now())
	}

	st := backend.OpenFile(&cfg.Storage)
	data, err := os.ReadFile(st.Path())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read data file", err)
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		fmt.Fprintf(out, "[dry-run] would upload %s (%d bytes) to s3://%s/%s\n", st.Path(), len(data), bucket, key)
		return nil
	}

	ctx := cmd.Context()
	client, err := newObjectPutter(ctx, &cfg.Backup)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create storage client", err)
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(key),
		Body:              bytes.NewReader(data),
		ContentType:       aws.String("application/json"),
		ChecksumAlgorithm: s3types.ChecksumAlgorithmCrc32,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "upload failed", err)
	}

	fmt.Fprintf(out, "Uploaded %s to s3://%s/%s\n", st.Path(), bucket, key)
	return nil
}

func defaultBackupKey(now time.Time) string {
	return fmt.Sprintf("feedbacks-%s.json", now.UTC().Format("20060102T150405Z"))
}

// newS3Client creates an S3 client. A custom endpoint switches to path-style
// addressing, which R2 and MinIO expect.
func newS3Client(ctx context.Context, cfg *config.BackupConfig) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

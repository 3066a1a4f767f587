package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
	"github.com/josegonzalo071-svg/house-backend/internal/logging"
	sc "github.com/josegonzalo071-svg/house-backend/internal/server/config"
	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
	"github.com/josegonzalo071-svg/house-backend/internal/server/repositories/repomanager"
)

// Seams for testing the S3 interactions without a live endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportedItem is one item in a snapshot. Data marshals as base64.
type ExportedItem struct {
	Name      string    `json:"name"`
	Mime      string    `json:"mime"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the full export of an owner's items.
type Snapshot struct {
	Owner      string         `json:"owner"`
	ExportedAt time.Time      `json:"exported_at"`
	Items      []ExportedItem `json:"items"`
}

// ExportResult carries either the inline snapshot or, when object storage is
// configured, a presigned download URL for the uploaded snapshot.
type ExportResult struct {
	Snapshot    *Snapshot
	DownloadURL string
}

// ExportService produces JSON snapshots of an owner's items and optionally
// uploads them to S3-compatible object storage.
type ExportService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	logger       logging.Logger
	config       *sc.Config
	storeTimeout time.Duration

	now func() time.Time
}

// NewExportService constructs an ExportService using repositories and server config.
func NewExportService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger, cfg *sc.Config) *ExportService {
	return &ExportService{
		db:           db,
		repomanager:  m,
		logger:       logger,
		config:       cfg,
		storeTimeout: cfg.StoreCallTimeout,
		now:          time.Now,
	}
}

// snapshotStorageKey places uploads under a per-day prefix, one random name
// per export.
func snapshotStorageKey(owner string) string {
	d := time.Now()
	return fmt.Sprintf("exports/%s/%d/%d/%d/%v.json", owner, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Export collects all of owner's items into a Snapshot. When S3 is
// configured, the snapshot is uploaded and the result carries a presigned
// GET URL; otherwise the snapshot is returned inline.
func (s *ExportService) Export(ctx context.Context, owner string) (*ExportResult, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", common.ErrValidation)
	}

	var stored []*models.Item
	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var listErr error
		stored, listErr = s.repomanager.Items(s.db).ListWithData(ctx, owner)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("error collecting items: %w", err)
	}

	snapshot := &Snapshot{Owner: owner, ExportedAt: s.now().UTC(), Items: make([]ExportedItem, 0, len(stored))}
	for _, item := range stored {
		snapshot.Items = append(snapshot.Items, ExportedItem{
			Name: item.Name, Mime: item.Mime, Data: item.Data, CreatedAt: item.CreatedAt,
		})
	}

	if !s.config.S3Configured() {
		return &ExportResult{Snapshot: snapshot}, nil
	}

	url, err := s.uploadSnapshot(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("error uploading snapshot: %w", err)
	}

	s.logger.Info(ctx, "snapshot exported to object storage", "owner", owner)
	return &ExportResult{Snapshot: snapshot, DownloadURL: url}, nil
}

func (s *ExportService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *ExportService) uploadSnapshot(ctx context.Context, snapshot *Snapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return "", err
	}

	key := snapshotStorageKey(snapshot.Owner)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)
	req, err := presignGetObject(presigner, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

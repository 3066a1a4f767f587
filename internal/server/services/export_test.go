package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
	"github.com/josegonzalo071-svg/house-backend/internal/server/config"
	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
)

func newExportFixture(t *testing.T, cfg *config.Config) (*ExportService, *fakeRepoManager) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := &fakeRepoManager{u: newFakeUsersRepo(), r: &fakeTokensRepo{}, i: newFakeItemsRepo()}
	return NewExportService(db, rm, testLogger(), cfg), rm
}

func seedItems(t *testing.T, rm *fakeRepoManager) {
	t.Helper()
	for _, it := range []struct {
		name, mime string
		data       []byte
	}{
		{"notes", "text/plain", []byte("hello")},
		{"scan", "image/png", []byte{0x89, 0x50, 0x4e, 0x47}},
	} {
		_, err := rm.i.Upsert(context.Background(), &models.Item{
			ID: it.name + "-id", Owner: "alice", Name: it.name, Mime: it.mime, Data: it.data,
		})
		require.NoError(t, err)
	}
}

func TestExport_InlineWhenS3Unconfigured(t *testing.T) {
	svc, rm := newExportFixture(t, testConfig())
	seedItems(t, rm)

	res, err := svc.Export(context.Background(), "alice")
	require.NoError(t, err)

	assert.Empty(t, res.DownloadURL)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, "alice", res.Snapshot.Owner)
	require.Len(t, res.Snapshot.Items, 2)

	// Payloads survive a JSON round trip (base64 on the wire).
	b, err := json.Marshal(res.Snapshot)
	require.NoError(t, err)
	var back Snapshot
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []byte("hello"), back.Items[0].Data)
}

func TestExport_EmptyOwnerRejected(t *testing.T) {
	svc, _ := newExportFixture(t, testConfig())

	_, err := svc.Export(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestExport_NoItemsYieldsEmptySnapshot(t *testing.T) {
	svc, _ := newExportFixture(t, testConfig())

	res, err := svc.Export(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, res.Snapshot.Items)
}

func TestExport_UploadsWhenS3Configured(t *testing.T) {
	cfg := testConfig()
	cfg.S3Bucket = "snapshots"
	cfg.S3Region = "us-east-1"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000/"

	svc, rm := newExportFixture(t, cfg)
	seedItems(t, rm)

	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	origPut := putObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
		presignGetObject = origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}

	var putBucket, putKey string
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		putBucket = aws.ToString(in.Bucket)
		putKey = aws.ToString(in.Key)
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/snapshots/" + aws.ToString(in.Key)}, nil
	}

	res, err := svc.Export(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, "snapshots", putBucket)
	assert.Contains(t, putKey, "exports/alice/")
	assert.Contains(t, res.DownloadURL, putKey)
	require.NotNil(t, res.Snapshot)
}

func TestSnapshotStorageKey_PerExportUnique(t *testing.T) {
	a := snapshotStorageKey("alice")
	b := snapshotStorageKey("alice")
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "exports/alice/")
	assert.Contains(t, a, time.Now().Format("2006"))
}

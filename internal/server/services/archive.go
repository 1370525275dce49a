package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/subdash/internal/common"
	sc "github.com/dmitrijs2005/subdash/internal/server/config"
	"github.com/dmitrijs2005/subdash/internal/netx"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	uploadToPresignedURL = netx.UploadToPresignedURL
)

const csvContentType = "text/csv"

// ArchiveService uploads CSV exports to an S3-compatible bucket and hands
// out presigned download links.
type ArchiveService struct {
	exports    *ExportService
	config     *sc.Config
	httpClient *http.Client
	now        func() time.Time
}

func NewArchiveService(exports *ExportService, config *sc.Config) *ArchiveService {
	return &ArchiveService{
		exports:    exports,
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// StorageKey returns a fresh object key for the report export.
func StorageKey(d time.Time, report Report) string {
	return fmt.Sprintf("exports/%d/%02d/%02d/%v/%s", d.Year(), d.Month(), d.Day(), uuid.New(), report.Filename())
}

func (s *ArchiveService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// Archive renders the report, uploads it and returns a presigned GET URL
// valid for PresignExpiry. Without a configured bucket it returns
// common.ErrorStorageDisabled.
func (s *ArchiveService) Archive(ctx context.Context, report Report) (string, error) {
	if !s.config.ArchiveEnabled() {
		return "", common.ErrorStorageDisabled
	}

	data, err := s.exports.Render(ctx, report)
	if err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config error: %w", err)
	}

	bucket := s.config.S3Bucket
	key := StorageKey(s.now(), report)

	put, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(csvContentType),
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign put error: %w", err)
	}

	if err := uploadToPresignedURL(ctx, s.httpClient, put.URL, csvContentType, data); err != nil {
		return "", fmt.Errorf("error uploading %s: %w", key, err)
	}

	get, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get error: %w", err)
	}

	return get.URL, nil
}

// ArchiveAll archives every report and returns the download URLs keyed by
// report.
func (s *ArchiveService) ArchiveAll(ctx context.Context) (map[Report]string, error) {
	urls := make(map[Report]string, len(Reports))
	for _, r := range Reports {
		u, err := s.Archive(ctx, r)
		if err != nil {
			return urls, err
		}
		urls[r] = u
	}
	return urls, nil
}

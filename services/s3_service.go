package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	appconfig "github.com/lucasperes/helpdesk-api/config"
	"github.com/lucasperes/helpdesk-api/utils"
)

// presignTTL is how long generated attachment URLs stay valid
const presignTTL = 15 * time.Minute

// S3ImageService stores attachment blobs in an S3 bucket. It is selected
// at startup when AWS_S3_BUCKET is configured; attachment URLs are
// presigned instead of served from /uploads.
type S3ImageService struct {
	client *s3.Client
	bucket string
	log    zerolog.Logger
}

// NewS3ImageService builds the S3 backend from application configuration
func NewS3ImageService(cfg *appconfig.Config, log zerolog.Logger) (*S3ImageService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3ImageService{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSS3Bucket,
		log:    log,
	}, nil
}

// UploadImage validates the file and puts it in the bucket under a
// collision-resistant generated key
func (s *S3ImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			s.log.Warn().Err(closeErr).Msg("failed to close uploaded file")
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := utils.UniqueFilename(fileHeader.Filename)
	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

// ImageURL generates a presigned URL for the stored object
func (s *S3ImageService) ImageURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presign := s3.NewPresignClient(s.client)
	request, err := presign.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return request.URL, nil
}

// DeleteImage removes the object from the bucket
func (s *S3ImageService) DeleteImage(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %q from S3: %w", key, err)
	}
	return nil
}

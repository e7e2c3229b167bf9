package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPresigner is the subset of the S3 presign client the photo service
// uses.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PhotoService turns stored photo keys into short-lived read URLs.
type PhotoService struct {
	Presigner ObjectPresigner
	Bucket    string
	Expiry    time.Duration
}

// NewPhotoService builds a presign client for bucket from an AWS config
func NewPhotoService(cfg aws.Config, bucket string, expiry time.Duration) *PhotoService {
	return &PhotoService{
		Presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		Bucket:    bucket,
		Expiry:    expiry,
	}
}

// GenerateReadURL generates a presigned URL for reading a file
func (ps *PhotoService) GenerateReadURL(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(ps.Bucket),
		Key:    aws.String(key),
	}
	presigned, err := ps.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(ps.Expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return presigned.URL, nil
}

// SignPhotos maps photo references to URLs, keeping their order. References
// that are already absolute URLs are passed through.
func (ps *PhotoService) SignPhotos(ctx context.Context, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
			urls = append(urls, ref)
			continue
		}
		url, err := ps.GenerateReadURL(ctx, ref)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

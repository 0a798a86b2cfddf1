// Package storage keeps note images in an S3-compatible bucket. Every key
// is scoped to its owner as private/<principal>/<key>.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

const defaultURLExpiry = 15 * time.Minute

var (
	ErrNotFound     = errors.New("blob not found")
	ErrNoPrincipal  = errors.New("blob key without principal")
	ErrEmptyBlobKey = errors.New("empty blob key")
	ErrInvalidKey   = errors.New("invalid blob key segment")
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

type Config struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	URLExpiry    time.Duration
}

type S3Store struct {
	bucket    string
	urlExpiry time.Duration
	client    *s3.Client
	presign   *s3.PresignClient
}

func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}

	return &S3Store{
		bucket:    cfg.Bucket,
		urlExpiry: expiry,
		client:    client,
		presign:   s3.NewPresignClient(client),
	}, nil
}

// ObjectKey returns the bucket key of a principal's blob. Both principal and
// key must be a single path segment, so no key can leave the principal's
// prefix.
func ObjectKey(principal, key string) (string, error) {
	if principal == "" {
		return "", ErrNoPrincipal
	}
	if key == "" {
		return "", ErrEmptyBlobKey
	}
	if err := checkSegment(principal); err != nil {
		return "", fmt.Errorf("principal %q: %w", principal, err)
	}
	if err := checkSegment(key); err != nil {
		return "", fmt.Errorf("key %q: %w", key, err)
	}
	return common.PrivateKeyPrefix + "/" + principal + "/" + key, nil
}

func checkSegment(s string) error {
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) || path.Clean(s) != s {
		return ErrInvalidKey
	}
	return nil
}

func (s *S3Store) Upload(ctx context.Context, principal, key string, data []byte, contentType string) error {
	objectKey, err := ObjectKey(principal, key)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put %s: %w", objectKey, err)
	}
	return nil
}

func (s *S3Store) Download(ctx context.Context, principal, key string) ([]byte, error) {
	objectKey, err := ObjectKey(principal, key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("get %s: %w", objectKey, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", objectKey, err)
	}
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, principal, key string) error {
	objectKey, err := ObjectKey(principal, key)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectKey, err)
	}
	return nil
}

// ResolveURL returns a presigned GET url valid for the configured expiry.
func (s *S3Store) ResolveURL(ctx context.Context, principal, key string) (string, error) {
	objectKey, err := ObjectKey(principal, key)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectKey, err)
	}
	return req.URL, nil
}

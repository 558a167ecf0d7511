package upload

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/georgemunganga/suby-backend/internal/config"
	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/georgemunganga/suby-backend/internal/platform/logger"
	"go.uber.org/zap"
)

// objectAPI is the part of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Store struct {
	client     objectAPI
	presign    func(ctx context.Context, key string) (string, error)
	bucket     string
	keyPrefix  string
	presignTTL time.Duration
	now        func() time.Time
}

// NewS3Store stores uploads in an S3-compatible bucket (AWS S3, MinIO, ...).
func NewS3Store(ctx context.Context, cfg config.S3) (Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	presigner := s3.NewPresignClient(client)

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	store := &s3Store{
		client:     client,
		bucket:     cfg.Bucket,
		keyPrefix:  "uploads/",
		presignTTL: ttl,
		now:        time.Now,
	}
	store.presign = func(ctx context.Context, key string) (string, error) {
		req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(store.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(store.presignTTL))
		if err != nil {
			return "", err
		}
		return req.URL, nil
	}
	return store, nil
}

func (s *s3Store) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, contentType, err := sniff(fh)
	if err != nil {
		return "", err
	}
	defer src.Close()

	token := tokenFor(contentType, s.now())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.keyPrefix + token),
		Body:          src,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fh.Size),
	})
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("put object %s: %w", token, err))
	}
	return token, nil
}

func (s *s3Store) Delete(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyPrefix + token),
	})
	return err
}

// Handler redirects to a short-lived presigned URL for the object.
func (s *s3Store) Handler(prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := path.Base(strings.TrimPrefix(r.URL.Path, prefix))
		if !validToken(token) {
			http.NotFound(w, r)
			return
		}
		url, err := s.presign(r.Context(), s.keyPrefix+token)
		if err != nil {
			logger.FromContext(r.Context()).Error("presign upload", zap.String("token", token), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	})
}

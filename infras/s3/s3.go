package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"libres/config"
	"libres/infras/otel"
	"libres/shared/constant"
)

const (
	otelAttrFileName = "file_name"
	otelAttrBucket   = "bucket"
	s3Region         = "auto"
)

// S3 stores room images in an S3 compatible bucket and hands back their public URLs.
type S3 interface {
	UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error)
	DeleteFile(ctx context.Context, bucketName, directory, objectName string) error
	GetObjectNameFromURL(bucketName, url string) (objectName string)
}

// objectAPI is the part of *s3.Client the bucket needs.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type bucket struct {
	client objectAPI
	cfg    config.S3
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) S3 {
	s3Cfg := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s3Cfg.AccessKeyID, s3Cfg.SecretAccessKey, "")),
		awsConfig.WithRegion(s3Region),
	)
	if err != nil {
		log.Error().Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s3Cfg.APIEndpoint)
		o.UsePathStyle = true
	})

	return newBucket(client, s3Cfg, otel)
}

func newBucket(client objectAPI, cfg config.S3, otel otel.Otel) *bucket {
	return &bucket{client: client, cfg: cfg, otel: otel}
}

// UploadFile streams file to directory/fileName and returns its URL on the public domain.
func (b *bucket) UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error) {
	ctx, scope := b.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".UploadFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucketName = b.bucketOrDefault(bucketName)
	key := path.Join(directory, fileName)

	scope.SetAttributes(map[string]any{
		otelAttrFileName: key,
		otelAttrBucket:   bucketName,
	})

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(fileHeader.Header.Get(constant.RequestHeaderContentType)),
	}

	if fileHeader.Size > 0 {
		input.ContentLength = aws.Int64(fileHeader.Size)
	}

	if _, err = b.client.PutObject(ctx, input); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload file to S3")

		return constant.Empty, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return strings.TrimSuffix(b.cfg.PublicDomain, "/") + "/" + key, nil
}

func (b *bucket) DeleteFile(ctx context.Context, bucketName, directory, objectName string) (err error) {
	ctx, scope := b.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".DeleteFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucketName = b.bucketOrDefault(bucketName)
	key := path.Join(directory, objectName)

	scope.SetAttributes(map[string]any{
		otelAttrFileName: key,
		otelAttrBucket:   bucketName,
	})

	if _, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	}); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete file from S3")

		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// GetObjectNameFromURL strips the public domain (or the bucket path on the API endpoint) from a
// URL returned by UploadFile, giving back the object key. Foreign URLs yield "".
func (b *bucket) GetObjectNameFromURL(bucketName, url string) (objectName string) {
	prefixes := []string{
		strings.TrimSuffix(b.cfg.PublicDomain, "/"),
		strings.TrimSuffix(b.cfg.APIEndpoint, "/") + "/" + b.bucketOrDefault(bucketName),
	}

	for _, prefix := range prefixes {
		if prefix == "" || strings.HasPrefix(prefix, "/") {
			continue
		}

		if key, ok := strings.CutPrefix(url, prefix+"/"); ok {
			return key
		}
	}

	return constant.Empty
}

func (b *bucket) bucketOrDefault(name string) string {
	if name == "" {
		return b.cfg.BucketName
	}

	return name
}

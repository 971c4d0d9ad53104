package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/specialistvlad/gridslicer/internal/ascgrid"
	"github.com/specialistvlad/gridslicer/internal/grid"
)

// S3API is the subset of the S3 client used by S3Writer.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the bucket tiles are uploaded to.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// S3Writer uploads tiles as <Prefix>/<sourceId>/<name> objects.
type S3Writer struct {
	api    S3API
	bucket string
	prefix string
}

// NewS3Writer builds an S3 client from the default AWS configuration chain,
// overridden by any static credentials, region or endpoint in opts.
func NewS3Writer(ctx context.Context, opts S3Options) (*S3Writer, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 output requires a bucket")
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	return NewS3WriterWithAPI(client, opts.Bucket, opts.Prefix), nil
}

// NewS3WriterWithAPI wraps an existing client.
func NewS3WriterWithAPI(api S3API, bucket, prefix string) *S3Writer {
	return &S3Writer{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key of a tile.
func (w *S3Writer) Key(sourceID, name string) string {
	return path.Join(w.prefix, sourceID, name)
}

// Prepare checks that the bucket is reachable. S3 has no directories, the
// source id only becomes part of every tile key.
func (w *S3Writer) Prepare(ctx context.Context, sourceID string) error {
	_, err := w.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(w.bucket)})
	if err != nil {
		return grid.NewOutputWriteError(sourceID, "s3://"+w.bucket, describeAPIError(err))
	}
	return nil
}

// WriteTile encodes the tile in memory and uploads it.
func (w *S3Writer) WriteTile(ctx context.Context, sourceID, name string, h ascgrid.Header, rows [][]string) error {
	key := w.Key(sourceID, name)

	var buf bytes.Buffer
	if err := ascgrid.Encode(&buf, h, rows); err != nil {
		return grid.NewOutputWriteError(sourceID, key, fmt.Errorf("encode tile: %w", err))
	}

	_, err := w.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return grid.NewOutputWriteError(sourceID, "s3://"+w.bucket+"/"+key, describeAPIError(err))
	}
	return nil
}

// describeAPIError surfaces the S3 error code when the service returned one.
func describeAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("s3 %s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return err
}

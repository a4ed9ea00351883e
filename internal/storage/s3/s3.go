// Package s3 serves a volume from an S3 bucket. Object keys are slash
// separated volume paths under an optional key prefix; "folders" are the
// common prefixes of a delimited listing.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"book-catalog/internal/storage"
)

const delimiter = "/"

// API is the subset of the S3 client the volume uses.
type API interface {
	s3.ListObjectsV2APIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config configures a bucket-backed volume.
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SkipHidden      bool
}

// Volume implements storage.Provider over a bucket.
type Volume struct {
	client     API
	bucket     string
	prefix     string
	skipHidden bool
}

var _ storage.Provider = (*Volume)(nil)

// NewClient builds an S3 client from cfg. A custom endpoint switches to
// path-style addressing for MinIO and Localstack.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var opts []func(*awsConfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsConfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// New returns a volume over client. It does not contact the bucket.
func New(client API, cfg Config) (*Volume, error) {
	if client == nil {
		return nil, errors.New("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	prefix := strings.Trim(cfg.Prefix, delimiter)
	if prefix != "" {
		prefix += delimiter
	}

	return &Volume{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     prefix,
		skipHidden: cfg.SkipHidden,
	}, nil
}

// Bucket returns the bucket name.
func (v *Volume) Bucket() string {
	return v.bucket
}

// isAbsent reports whether err says the bucket itself is gone.
func isAbsent(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}

func (v *Volume) checkBucket(ctx context.Context) error {
	_, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.bucket)})
	if err == nil {
		return nil
	}
	if isAbsent(err) {
		return storage.ErrVolumeAbsent
	}
	return fmt.Errorf("failed to access bucket %q: %w", v.bucket, err)
}

// VolumePresent reports whether the bucket is reachable.
func (v *Volume) VolumePresent(ctx context.Context) bool {
	return v.checkBucket(ctx) == nil
}

func (v *Volume) key(p string) string {
	return v.prefix + p
}

func (v *Volume) folderKey(p string) string {
	if p == storage.RootPath {
		return v.prefix
	}
	return v.prefix + p + delimiter
}

// ResolveFolder resolves path to a folder. A folder exists when at least
// one key lives under it.
func (v *Volume) ResolveFolder(ctx context.Context, path string) (storage.Folder, error) {
	if err := ctx.Err(); err != nil {
		return storage.Folder{}, err
	}

	p, err := storage.CleanPath(path)
	if err != nil {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	if err := v.checkBucket(ctx); err != nil {
		return storage.Folder{}, err
	}
	if p == storage.RootPath {
		return storage.Folder{Name: v.bucket, Path: storage.RootPath}, nil
	}

	out, err := v.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(v.bucket),
		Prefix:  aws.String(v.folderKey(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	if len(out.Contents) > 0 {
		return storage.Folder{Name: storage.Base(p), Path: p}, nil
	}

	exact, err := v.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(v.bucket),
		Prefix:  aws.String(v.key(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, err)
	}
	if len(exact.Contents) > 0 && aws.ToString(exact.Contents[0].Key) == v.key(p) {
		return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, storage.ErrNotFolder)
	}
	return storage.Folder{}, fmt.Errorf("resolve %q: %w", path, os.ErrNotExist)
}

// ListSubfolders lists the common prefixes directly under f.
func (v *Volume) ListSubfolders(ctx context.Context, f storage.Folder) ([]storage.Entry, error) {
	folders, _, err := v.list(ctx, f)
	return folders, err
}

// ListFiles lists the objects directly under f.
func (v *Volume) ListFiles(ctx context.Context, f storage.Folder) ([]storage.Entry, error) {
	_, files, err := v.list(ctx, f)
	return files, err
}

func (v *Volume) list(ctx context.Context, f storage.Folder) (folders, files []storage.Entry, err error) {
	base := v.folderKey(f.Path)
	paginator := s3.NewListObjectsV2Paginator(v.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(v.bucket),
		Prefix:    aws.String(base),
		Delimiter: aws.String(delimiter),
	})

	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isAbsent(err) {
				return nil, nil, storage.ErrVolumeAbsent
			}
			return nil, nil, fmt.Errorf("list %q: %w", f.Path, err)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), base), delimiter)
			if name == "" || v.hidden(name) {
				continue
			}
			folders = append(folders, storage.Entry{Name: name, Path: storage.Join(f.Path, name)})
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), base)
			// Zero-byte "dir/" markers created by some clients.
			if name == "" || strings.HasSuffix(name, delimiter) || v.hidden(name) {
				continue
			}
			files = append(files, storage.Entry{Name: name, Path: storage.Join(f.Path, name)})
		}
	}
	return folders, files, nil
}

func (v *Volume) hidden(name string) bool {
	return v.skipHidden && strings.HasPrefix(name, ".")
}

// ListAllFiles lists every object under the prefix.
func (v *Volume) ListAllFiles(ctx context.Context) ([]storage.Entry, error) {
	paginator := s3.NewListObjectsV2Paginator(v.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(v.bucket),
		Prefix: aws.String(v.prefix),
	})

	var files []storage.Entry
	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isAbsent(err) {
				return nil, storage.ErrVolumeAbsent
			}
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			p := strings.TrimPrefix(aws.ToString(obj.Key), v.prefix)
			if p == "" || strings.HasSuffix(p, delimiter) || v.hiddenPath(p) {
				continue
			}
			files = append(files, storage.Entry{Name: storage.Base(p), Path: p})
		}
	}
	return files, nil
}

func (v *Volume) hiddenPath(p string) bool {
	if !v.skipHidden {
		return false
	}
	for _, segment := range strings.Split(p, delimiter) {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

// OpenForRead streams the object body. The caller closes it.
func (v *Volume) OpenForRead(ctx context.Context, file storage.Entry) (io.ReadCloser, error) {
	p, err := storage.CleanPath(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", file.Path, err)
	}

	out, err := v.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.key(p)),
	})
	if err != nil {
		switch {
		case isNoSuchKey(err):
			return nil, fmt.Errorf("open %q: %w", file.Path, os.ErrNotExist)
		case isAbsent(err):
			return nil, storage.ErrVolumeAbsent
		}
		return nil, fmt.Errorf("open %q: %w", file.Path, err)
	}
	return out.Body, nil
}

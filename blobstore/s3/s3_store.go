package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/svmgo/blobstore"
)

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	cfg      UploadConfig
	uploader *manager.Uploader
}

var (
	_ blobstore.BlobStore         = (*Store)(nil)
	_ blobstore.ConditionalPutter = (*Store)(nil)
)

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	return newStore(client, bucket, o), nil
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "models/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...Option) *Store {
	o := options{prefix: rootPrefix, upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}
	return newStore(client, bucket, o)
}

func newStore(client Client, bucket string, o options) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   o.prefix,
		cfg:      o.upload,
		uploader: newUploader(client, o.upload),
	}
}

func (s *Store) key(name string) string {
	return joinKey(s.prefix, name)
}

// Open opens a blob for ranged reads.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Put uploads a blob. Objects of at least UploadConfig.PartSize bytes use
// a multipart upload.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return upload(ctx, s.client, s.uploader, s.cfg, s.bucket, s.key(name), data)
}

// PutIfNotExists uploads a blob unless the key exists. It returns
// blobstore.ErrExists when the conditional write fails.
func (s *Store) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	return putIfNotExists(ctx, s.client, s.cfg, s.bucket, s.key(name), data)
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns the sorted names starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.prefix, prefix)
}

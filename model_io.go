package svmgo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/hupe1980/svmgo/blobstore"
	"github.com/hupe1980/svmgo/persistence"
	"github.com/hupe1980/svmgo/resource"
)

// CurrentPointer is the blob below a model name that holds the path of the
// published version.
const CurrentPointer = "CURRENT"

// WriteTo writes m as a persistence envelope with the default codec and
// compression. It implements io.WriterTo.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	return m.Encode(w)
}

// Encode writes m as a persistence envelope. Writes to w are throttled by the
// IO limit of the model's resource controller.
func (m *Model) Encode(w io.Writer, opts ...persistence.Option) (int64, error) {
	return m.EncodeContext(context.Background(), w, opts...)
}

// EncodeContext is Encode with a context bounding the IO limiter waits.
func (m *Model) EncodeContext(ctx context.Context, w io.Writer, opts ...persistence.Option) (int64, error) {
	if m == nil || len(m.dfs) == 0 {
		return 0, ErrNotTrained
	}
	return persistence.Encode(resource.NewRateLimitedWriter(ctx, w, m.resource), m.Record(), opts...)
}

// ReadModel reads a model written by WriteTo or Encode.
func ReadModel(r io.Reader, optFns ...Option) (*Model, error) {
	var rec Record
	if err := persistence.Decode(r, &rec); err != nil {
		return nil, err
	}
	return FromRecord(&rec, optFns...)
}

// Save stores m under name. The upload waits for the IO limit of the resource
// controller the model was trained with before the blob is put.
func (m *Model) Save(ctx context.Context, store blobstore.BlobStore, name string, opts ...persistence.Option) error {
	return m.save(ctx, name, store.Put, opts)
}

func (m *Model) save(ctx context.Context, name string, put func(context.Context, string, []byte) error, opts []persistence.Option) error {
	if m == nil || len(m.dfs) == 0 {
		return ErrNotTrained
	}

	var buf bytes.Buffer
	n, err := persistence.Encode(&buf, m.Record(), opts...)
	if err == nil {
		// The whole envelope is charged before it is handed to the store.
		err = m.resource.AcquireIO(ctx, buf.Len())
	}
	if err == nil {
		err = put(ctx, name, buf.Bytes())
	}
	if err != nil {
		err = fmt.Errorf("save model %q: %w", name, err)
	}

	m.logger.LogSave(ctx, name, n, err)
	return err
}

// LoadModel reads the model stored under name. Memory-mapped blobs are
// decoded in place; other blobs are streamed and throttled by the IO limit
// of the resource controller given with WithResourceController.
func LoadModel(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Model, error) {
	o := applyOptions(optFns)
	m, err := loadModel(ctx, store, name, &o, optFns)
	o.logger.LogLoad(ctx, name, err)
	return m, err
}

func loadModel(ctx context.Context, store blobstore.BlobStore, name string, o *options, optFns []Option) (*Model, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open model %q: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	var rec Record
	if mm, ok := blob.(blobstore.Mappable); ok {
		data, mapErr := mm.Bytes()
		if mapErr != nil {
			return nil, fmt.Errorf("map model %q: %w", name, mapErr)
		}
		err = persistence.Unmarshal(data, &rec)
	} else {
		r := resource.NewRateLimitedReader(ctx, blobstore.NewReader(ctx, blob), o.resource)
		err = persistence.Decode(r, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("decode model %q: %w", name, err)
	}
	return FromRecord(&rec, optFns...)
}

// PublishModel saves m as a new version below name and then points
// name/CURRENT at it. It returns the path of the new version.
//
// Versions are never overwritten on stores implementing
// blobstore.ConditionalPutter. Stores with an atomic pointer commit (such as
// the DynamoDB-backed S3 store) reject concurrent publishers instead of
// silently overwriting.
func PublishModel(ctx context.Context, store blobstore.BlobStore, name string, m *Model, opts ...persistence.Option) (string, error) {
	put := store.Put
	if cp, ok := store.(blobstore.ConditionalPutter); ok {
		put = cp.PutIfNotExists
	}

	version := path.Join(name, fmt.Sprintf("model-%d.svm", time.Now().UTC().UnixNano()))
	if err := m.save(ctx, version, put, opts); err != nil {
		return "", err
	}
	if err := store.Put(ctx, path.Join(name, CurrentPointer), []byte(version)); err != nil {
		return "", fmt.Errorf("publish %q: %w", version, err)
	}
	return version, nil
}

// LoadCurrentModel loads the version name/CURRENT points at.
func LoadCurrentModel(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Model, error) {
	version, err := readPointer(ctx, store, path.Join(name, CurrentPointer))
	if err != nil {
		return nil, err
	}
	return LoadModel(ctx, store, version, optFns...)
}

func readPointer(ctx context.Context, store blobstore.BlobStore, name string) (string, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", name, err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", fmt.Errorf("%w: empty pointer %q", ErrInvalidModel, name)
	}
	return version, nil
}

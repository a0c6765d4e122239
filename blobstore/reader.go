package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/svmgo/internal/conv"
)

// defaultChunkSize is the read size of Reader.
const defaultChunkSize = 1 << 20

// Reader reads a Blob sequentially.
type Reader struct {
	ctx  context.Context
	blob Blob
	off  int64
}

// NewReader returns an io.Reader over blob. ctx bounds every read.
func NewReader(ctx context.Context, blob Blob) *Reader {
	return &Reader{ctx: ctx, blob: blob}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.off >= r.blob.Size() {
		return 0, io.EOF
	}
	if len(p) > defaultChunkSize {
		p = p[:defaultChunkSize]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}

// ReadAll returns the contents of blob. Mappable blobs are returned without
// copying; the slice is then only valid until the blob is closed.
func ReadAll(ctx context.Context, blob Blob) ([]byte, error) {
	if m, ok := blob.(Mappable); ok {
		return m.Bytes()
	}

	size, err := conv.Int64ToInt(blob.Size())
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := blob.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return nil, err
	}
	if n < len(buf) {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}

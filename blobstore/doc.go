// Package blobstore provides storage abstraction for persisted svmgo models.
//
// BlobStore is the interface for reading and writing model envelopes and
// the CURRENT pointers of published models.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem; blobs are memory-mapped for reading
//   - s3.Store: Amazon S3 (optionally with DynamoDB pointer commits)
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can expose their contents without copying implement Mappable.
package blobstore

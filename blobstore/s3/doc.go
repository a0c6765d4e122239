// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("models/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	version, err := svmgo.PublishModel(ctx, store, "iris", model)
//
// # Features
//
//   - Range reads for streaming model decoding
//   - Multipart uploads with CRC32C checksums for large models
//   - Conditional creates (If-None-Match) so published versions are never overwritten
//   - Automatic pagination for listing
//   - DynamoDB-backed CURRENT pointers for safe concurrent publishers
package s3

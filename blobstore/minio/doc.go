// Package minio stores model artifacts in MinIO or any other S3-compatible
// object store (Ceph, Garage, SeaweedFS) through the minio-go client.
//
// Use it where the AWS SDK is not wanted, e.g. on-premise or air-gapped
// deployments. Object keys are the blob names below an optional prefix.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "ml-artifacts", "svm")
//	version, err := svmgo.PublishModel(ctx, store, "iris", model)
//	...
//	current, err := svmgo.LoadCurrentModel(ctx, store, "iris")
//
// Blobs are read with ranged GETs, so LoadModel decodes the envelope while it
// streams. PublishModel moves the CURRENT pointer with a plain overwrite; use
// the DynamoDB commit store of package s3 when several writers publish the
// same model.
package minio

// Package svmgo trains and evaluates support vector machines in pure Go.
//
// It covers the five classic formulations (C-SVC, nu-SVC, one-class,
// epsilon-SVR and nu-SVR) with linear, polynomial, RBF, sigmoid, chi-squared
// and histogram-intersection kernels. Multi-class problems are decomposed
// one-vs-one and the binary sub-problems are solved concurrently with an SMO
// solver backed by an LRU cache of kernel rows.
//
// # Quick Start
//
//	data, _ := svmgo.NewDataset(rows, labels)
//
//	p := svmgo.DefaultParams()        // C-SVC, RBF, gamma=1, C=1
//	p.C = 10
//	trainer, _ := svmgo.NewTrainer(p)
//
//	model, _ := trainer.Train(ctx, data)
//	preds, _ := model.Predict(ctx, samples) // row-major, VarCount values per row
//
// # Hyperparameter Search
//
// TrainAuto evaluates a logarithmic grid of every applicable parameter with
// k-fold cross-validation and retrains on the whole data set:
//
//	model, report, _ := trainer.TrainAuto(ctx, data, svmgo.AutoConfig{
//	    KFold: 5,
//	    Grids: svmgo.DefaultGrids(),
//	})
//	fmt.Println(report.Best.C, report.Best.Gamma, report.BestError)
//
// The fold split is seeded (WithSeed), so a search is reproducible.
//
// # Persistence
//
// Models are stored as versioned, checksummed envelopes (see package
// persistence) in any blobstore.BlobStore:
//
//	store := blobstore.NewLocalStore("./models")
//	version, _ := svmgo.PublishModel(ctx, store, "iris", model)
//	model, _ = svmgo.LoadCurrentModel(ctx, store, "iris")
//
// Local blobs are memory-mapped and decoded in place; remote blobs (S3,
// MinIO) are streamed and can be throttled with a resource.Controller.
//
// # Observability
//
// Training, solving, cross-validation and prediction are logged through
// log/slog (WithLogger, WithLogLevel) and counted by a MetricsCollector
// (WithMetricsCollector). Both are no-ops by default.
//
// # Errors
//
// Invalid parameters are reported as *ConfigurationError, unusable training
// data as *DataError and solver failures as *ConvergenceError. All of them
// match their sentinel with errors.Is.
package svmgo

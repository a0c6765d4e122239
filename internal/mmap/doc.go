// Package mmap provides read-only memory-mapped file access.
//
// Local model files are mapped and decoded in place instead of being copied
// into a buffer first.
//
//	m, err := mmap.Open("models/iris/model-1.svm")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix systems use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile, where Advise is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers must
// not touch the slice returned by Bytes after Close.
package mmap

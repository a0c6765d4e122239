// Package persistence provides the self-describing binary envelope used to
// store trained models.
//
// # Layout (little-endian)
//
//	Header (32 bytes)
//	  Magic            uint32  "SVM0"
//	  Version          uint16
//	  Compression      uint8   0=none, 1=lz4, 2=zstd
//	  CodecNameLen     uint8
//	  UncompressedSize uint64
//	  StoredSize       uint64
//	  Checksum         uint32  CRC32 (IEEE) of the stored payload
//	  Reserved         uint32
//	Codec name (CodecNameLen bytes)
//	Payload    (StoredSize bytes)
//
// The payload is the codec encoding of a record, optionally compressed.
// Compression falls back to none when it does not shrink the payload.
package persistence

package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies model envelopes (ASCII: "SVM0").
	MagicNumber uint32 = 0x53564d30
	// Version is the current envelope version.
	Version uint16 = 1

	// HeaderSize is the encoded size of Header.
	HeaderSize = 32

	// MaxPayloadSize bounds the decoded payload to guard against corrupt headers.
	MaxPayloadSize = 4 << 30
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrCorrupt            = errors.New("corrupt envelope")
)

// Compression selects the payload compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Header is the fixed-size envelope header.
type Header struct {
	Magic            uint32
	Version          uint16
	Compression      Compression
	CodecNameLen     uint8
	UncompressedSize uint64
	StoredSize       uint64
	Checksum         uint32
	Reserved         uint32
}

func (h *Header) validate() error {
	if h.Magic != MagicNumber {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	if h.Compression > CompressionZSTD {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, h.Compression)
	}
	if h.UncompressedSize > MaxPayloadSize || h.StoredSize > MaxPayloadSize {
		return fmt.Errorf("%w: payload size %d/%d exceeds limit", ErrCorrupt, h.StoredSize, h.UncompressedSize)
	}
	if h.Compression == CompressionNone && h.StoredSize != h.UncompressedSize {
		return fmt.Errorf("%w: stored size %d != payload size %d", ErrCorrupt, h.StoredSize, h.UncompressedSize)
	}
	return nil
}

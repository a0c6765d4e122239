package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/svmgo/codec"
	"github.com/hupe1980/svmgo/internal/conv"
)

// Options configures envelope encoding.
type Options struct {
	// Codec encodes the record. Defaults to codec.Default.
	Codec codec.Codec
	// Compression selects the payload compression. Defaults to CompressionZSTD.
	Compression Compression
}

// Option configures Options.
type Option func(*Options)

// WithCodec selects the record codec. nil selects codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		if c == nil {
			c = codec.Default
		}
		o.Codec = c
	}
}

// WithCompression selects the payload compression.
func WithCompression(c Compression) Option {
	return func(o *Options) {
		o.Compression = c
	}
}

func applyOptions(optFns []Option) Options {
	o := Options{
		Codec:       codec.Default,
		Compression: CompressionZSTD,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// Marshal encodes v into a complete envelope.
func Marshal(v any, optFns ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, v, optFns...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes v as an envelope to w and returns the number of bytes written.
func Encode(w io.Writer, v any, optFns ...Option) (int64, error) {
	o := applyOptions(optFns)

	payload, err := o.Codec.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode record with %s: %w", o.Codec.Name(), err)
	}

	stored, applied, err := compress(payload, o.Compression)
	if err != nil {
		return 0, err
	}

	name := o.Codec.Name()
	nameLen, err := conv.IntToUint8(len(name))
	if err != nil {
		return 0, fmt.Errorf("codec name %q: %w", name, err)
	}
	size, err := conv.IntToUint64(len(payload))
	if err != nil {
		return 0, err
	}
	storedSize, err := conv.IntToUint64(len(stored))
	if err != nil {
		return 0, err
	}

	h := Header{
		Magic:            MagicNumber,
		Version:          Version,
		Compression:      applied,
		CodecNameLen:     nameLen,
		UncompressedSize: size,
		StoredSize:       storedSize,
		Checksum:         CalculateChecksum(stored),
	}

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	written := int64(HeaderSize)

	n, err := io.WriteString(w, name)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write codec name: %w", err)
	}

	n, err = w.Write(stored)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write payload: %w", err)
	}
	return written, nil
}

// ReadHeader reads and validates the header and codec name.
func ReadHeader(r io.Reader) (*Header, codec.Codec, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if err := h.validate(); err != nil {
		return nil, nil, err
	}

	name := make([]byte, h.CodecNameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, nil, fmt.Errorf("read codec name: %w", err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return &h, c, nil
}

// Decode reads an envelope from r and decodes its record into v.
func Decode(r io.Reader, v any) error {
	h, c, err := ReadHeader(r)
	if err != nil {
		return err
	}

	storedSize, err := conv.Uint64ToInt(h.StoredSize)
	if err != nil {
		return err
	}

	cr := NewChecksumReader(r)
	stored, err := readStored(cr, storedSize)
	if err != nil {
		return err
	}
	if err := cr.Verify(h.Checksum); err != nil {
		return err
	}

	return decodePayload(h, c, stored, v)
}

// readStoredChunk bounds the up-front allocation of readStored.
const readStoredChunk = 1 << 20

// readStored reads exactly size bytes. The buffer grows with the data that
// actually arrives, so a corrupt header cannot force a huge allocation.
func readStored(r io.Reader, size int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(size, readStoredChunk))
	if _, err := io.CopyN(&buf, r, int64(size)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: read payload: %w", ErrCorrupt, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a complete envelope held in memory (e.g. a mapped file).
func Unmarshal(data []byte, v any) error {
	r := bytes.NewReader(data)
	h, c, err := ReadHeader(r)
	if err != nil {
		return err
	}

	off := HeaderSize + int(h.CodecNameLen)
	storedSize, err := conv.Uint64ToInt(h.StoredSize)
	if err != nil {
		return err
	}
	if len(data)-off < storedSize {
		return fmt.Errorf("%w: payload truncated (%d of %d bytes)", ErrCorrupt, len(data)-off, storedSize)
	}

	stored := data[off : off+storedSize]
	if err := verifyChecksum(h.Checksum, CalculateChecksum(stored)); err != nil {
		return err
	}
	return decodePayload(h, c, stored, v)
}

func decodePayload(h *Header, c codec.Codec, stored []byte, v any) error {
	payload, err := decompress(stored, h.Compression, h.UncompressedSize)
	if err != nil {
		return err
	}
	if err := c.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode record with %s: %w", c.Name(), err)
	}
	return nil
}

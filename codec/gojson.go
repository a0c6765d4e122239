package codec

import gojson "github.com/goccy/go-json"

// GoJSON encodes model records with github.com/goccy/go-json. It is the
// default codec of persistence envelopes: support vectors and dual
// coefficients dominate a record, and go-json encodes their float slices
// faster than encoding/json. The output is plain JSON, so envelopes written
// with it decode with JSON as well.
type GoJSON struct{}

// Marshal encodes a model record.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes a model record into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json", the name stored in the envelope header.
func (GoJSON) Name() string { return "go-json" }

package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Use it when a model must be readable by tooling that has no access to
// go-json; both codecs produce interchangeable JSON.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for newly written models.
var Default Codec = GoJSON{}

package job

import "encoding/json"

// JSONCodec encodes/decodes jobs as JSON. This is the default and matches
// what most queue consumers expect on the wire.
type JSONCodec struct{}

func (c *JSONCodec) Encode(j *Job) ([]byte, error) {
	return json.Marshal(j)
}

func (c *JSONCodec) Decode(data []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *JSONCodec) Name() string { return CodecNameJSON }

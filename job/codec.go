package job

// Codec defines the serialization contract for jobs at rest in a store.
type Codec interface {
	// Encode serializes a job to bytes.
	Encode(j *Job) ([]byte, error)

	// Decode deserializes bytes into a job.
	Decode(data []byte) (*Job, error)

	// Name returns the codec identifier (e.g., "json", "msgpack").
	Name() string
}

// CodecName constants for configuration.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. Defaults to JSON.
func GetCodec(name string) Codec {
	switch name {
	case CodecNameMsgpack:
		return &MsgpackCodec{}
	case CodecNameJSON, "":
		return &JSONCodec{}
	default:
		return &JSONCodec{}
	}
}

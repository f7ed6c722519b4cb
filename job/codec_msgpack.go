package job

import "github.com/vmihailenco/msgpack/v5"

// MsgpackCodec encodes/decodes jobs as MessagePack.
type MsgpackCodec struct{}

func (c *MsgpackCodec) Encode(j *Job) ([]byte, error) {
	return msgpack.Marshal(j)
}

func (c *MsgpackCodec) Decode(data []byte) (*Job, error) {
	var j Job
	if err := msgpack.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *MsgpackCodec) Name() string { return CodecNameMsgpack }

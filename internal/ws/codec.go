package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Subprotocols a client may request in Sec-WebSocket-Protocol.
const (
	ProtocolJSON    = "roomchat.json"
	ProtocolMsgpack = "roomchat.msgpack"
)

var Subprotocols = []string{ProtocolJSON, ProtocolMsgpack}

// Codec turns events into websocket frames and back.
type Codec interface {
	Name() string
	FrameType() int
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Name() string                    { return ProtocolJSON }
func (jsonCodec) FrameType() int                  { return websocket.TextMessage }
func (jsonCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }
func (jsonCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                    { return ProtocolMsgpack }
func (msgpackCodec) FrameType() int                  { return websocket.BinaryMessage }
func (msgpackCodec) Encode(v any) ([]byte, error)    { return msgpack.Marshal(v) }
func (msgpackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// CodecFor returns the codec for a negotiated subprotocol. Clients that did
// not ask for one speak JSON.
func CodecFor(subprotocol string) Codec {
	if subprotocol == ProtocolMsgpack {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/draw-and-guess/internal/protocol"
)

// Format 帧格式
type Format int

const (
	FormatJSON   Format = iota // WebSocket 文本帧
	FormatBinary               // WebSocket 二进制帧，protobuf 信封
)

// 二进制信封字段号：type=1 string, id=2 varint, payload=3 bytes
const (
	fieldType    protowire.Number = 1
	fieldID      protowire.Number = 2
	fieldPayload protowire.Number = 3
)

// Encode 按指定格式编码消息
func Encode(m *protocol.Message, format Format) ([]byte, error) {
	if format == FormatBinary {
		return EncodeBinary(m), nil
	}
	return EncodeJSON(m)
}

// Decode 按指定格式解码消息
// 注意: 使用完毕后可调用 PutMessage 归还对象到池
func Decode(data []byte, format Format) (*protocol.Message, error) {
	if format == FormatBinary {
		return DecodeBinary(data)
	}
	return DecodeJSON(data)
}

// EncodeJSON 编码为 JSON 文本
func EncodeJSON(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// Encoder 会追加换行
	out := buf.Bytes()
	return append([]byte(nil), out[:len(out)-1]...), nil
}

// DecodeJSON 从 JSON 文本解码
func DecodeJSON(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrEmptyType
	}
	return msg, nil
}

// EncodeBinary 编码为 protobuf 信封
func EncodeBinary(m *protocol.Message) []byte {
	b := make([]byte, 0, len(m.Type)+len(m.Payload)+16)
	b = protowire.AppendTag(b, fieldType, protowire.BytesType)
	b = protowire.AppendString(b, string(m.Type))
	if m.ID != 0 {
		b = protowire.AppendTag(b, fieldID, protowire.VarintType)
		b = protowire.AppendVarint(b, m.ID)
	}
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	return b
}

// DecodeBinary 从 protobuf 信封解码，未知字段被跳过
func DecodeBinary(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			PutMessage(msg)
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.BytesType:
			var v string
			v, n = protowire.ConsumeString(data)
			msg.Type = protocol.MessageType(v)
		case num == fieldID && typ == protowire.VarintType:
			msg.ID, n = protowire.ConsumeVarint(data)
		case num == fieldPayload && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(data)
			msg.Payload = append([]byte(nil), v...) // 复制 payload 避免引用
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			PutMessage(msg)
			return nil, fmt.Errorf("字段 %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}

	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrEmptyType
	}
	return msg, nil
}

// Package command encodes and decodes Esp32Command messages, the requests the
// host sends to the logger's ESP32 co-processor.
package command

import (
	"fmt"

	"github.com/danmuck/spsproto/internal/protocol"
	"github.com/danmuck/spsproto/internal/protocol/schema"
	"github.com/danmuck/spsproto/internal/protocol/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// Kind identifies a command variant by its Esp32Command oneof field number.
type Kind protowire.Number

const (
	KindPage Kind = Kind(schema.CommandPage)
	KindTest Kind = Kind(schema.CommandTest)
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindTest:
		return "test"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// RequestType is the PageCommand file operation.
type RequestType int32

const (
	RequestOpen  RequestType = 0
	RequestClose RequestType = 1
	RequestRead  RequestType = 2
	RequestWrite RequestType = 3
)

var requestNames = [...]string{"OPEN", "CLOSE", "READ", "WRITE"}

func (r RequestType) String() string {
	if r >= 0 && int(r) < len(requestNames) {
		return requestNames[r]
	}
	return fmt.Sprintf("RequestType(%d)", int32(r))
}

func (r RequestType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ChangeState is the TestCommand target state.
type ChangeState int32

const (
	StateReceive        ChangeState = 0
	StateReceiveRequest ChangeState = 1
	StateRequest        ChangeState = 2
)

var stateNames = [...]string{"RECEIVE", "RECEIVE_REQUEST", "REQUEST"}

func (s ChangeState) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("ChangeState(%d)", int32(s))
}

func (s ChangeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Command is the closed set of Esp32Command variants.
type Command interface {
	Kind() Kind
	// Fields projects the command under its proto field names.
	Fields() map[string]any
	encode(b *wire.Builder)
	merge(fields []wire.Field) (Command, error)
}

// PageCommand asks the ESP32 to operate on a paged file.
type PageCommand struct {
	FileRequest    RequestType
	FileDescriptor uint32
	BlockSize      uint32
	NumBytes       uint32
}

func (PageCommand) Kind() Kind { return KindPage }

func (c PageCommand) Fields() map[string]any {
	return map[string]any{
		"file_request":    c.FileRequest,
		"file_descriptor": c.FileDescriptor,
		"block_size":      c.BlockSize,
		"num_bytes":       c.NumBytes,
	}
}

func (c PageCommand) encode(b *wire.Builder) {
	b.Int32(schema.PageFileRequest, int32(c.FileRequest))
	b.Uint32(schema.PageFileDescriptor, c.FileDescriptor)
	b.Uint32(schema.PageBlockSize, c.BlockSize)
	b.Uint32(schema.PageNumBytes, c.NumBytes)
}

func (c PageCommand) merge(fields []wire.Field) (Command, error) {
	var err error
	for _, f := range fields {
		switch f.Num {
		case schema.PageFileRequest:
			var v int32
			if v, err = f.Int32(); err == nil {
				if v < 0 || int(v) >= len(requestNames) {
					return nil, &protocol.EnumError{Enum: "RequestType", Value: v}
				}
				c.FileRequest = RequestType(v)
			}
		case schema.PageFileDescriptor:
			c.FileDescriptor, err = f.Uint32()
		case schema.PageBlockSize:
			c.BlockSize, err = f.Uint32()
		case schema.PageNumBytes:
			c.NumBytes, err = f.Uint32()
		}
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// TestCommand drives the ESP32 test state machine.
type TestCommand struct {
	State ChangeState
	Data  int32
}

func (TestCommand) Kind() Kind { return KindTest }

func (c TestCommand) Fields() map[string]any {
	return map[string]any{
		"state": c.State,
		"data":  c.Data,
	}
}

func (c TestCommand) encode(b *wire.Builder) {
	b.Int32(schema.TestState, int32(c.State))
	b.Int32(schema.TestData, c.Data)
}

func (c TestCommand) merge(fields []wire.Field) (Command, error) {
	var err error
	for _, f := range fields {
		switch f.Num {
		case schema.TestState:
			var v int32
			if v, err = f.Int32(); err == nil {
				if v < 0 || int(v) >= len(stateNames) {
					return nil, &protocol.EnumError{Enum: "ChangeState", Value: v}
				}
				c.State = ChangeState(v)
			}
		case schema.TestData:
			c.Data, err = f.Int32()
		}
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

package command

import (
	"github.com/danmuck/spsproto/internal/protocol"
	"github.com/danmuck/spsproto/internal/protocol/schema"
	"github.com/danmuck/spsproto/internal/protocol/wire"
	"google.golang.org/protobuf/encoding/protowire"
)

// Args carries the encoder inputs for every command kind. Each builder reads
// only the fields its kind uses.
type Args struct {
	// page
	Request        string
	FileDescriptor uint32
	BlockSize      uint32
	NumBytes       uint32

	// test
	State string
	Data  int32
}

var kinds = map[string]Kind{
	"page": KindPage,
	"test": KindTest,
}

var requestTypes = map[string]RequestType{
	"open":  RequestOpen,
	"close": RequestClose,
	"read":  RequestRead,
	"write": RequestWrite,
}

var changeStates = map[string]ChangeState{
	"receive":         StateReceive,
	"receive_request": StateReceiveRequest,
	"request":         StateRequest,
}

var builders = map[Kind]func(Args) (Command, error){
	KindPage: buildPage,
	KindTest: buildTest,
}

// zeros is keyed by the submessage each Esp32Command oneof member carries.
var zeros = map[schema.Message]Command{
	schema.MsgPageCommand: PageCommand{},
	schema.MsgTestCommand: TestCommand{},
}

func ParseKind(s string) (Kind, error) {
	return protocol.Lookup(kinds, "command type", s)
}

func ParseRequestType(s string) (RequestType, error) {
	return protocol.Lookup(requestTypes, "file request type", s)
}

func ParseChangeState(s string) (ChangeState, error) {
	return protocol.Lookup(changeStates, "test state", s)
}

func buildPage(a Args) (Command, error) {
	req, err := ParseRequestType(a.Request)
	if err != nil {
		return nil, err
	}
	return PageCommand{
		FileRequest:    req,
		FileDescriptor: a.FileDescriptor,
		BlockSize:      a.BlockSize,
		NumBytes:       a.NumBytes,
	}, nil
}

func buildTest(a Args) (Command, error) {
	state, err := ParseChangeState(a.State)
	if err != nil {
		return nil, err
	}
	return TestCommand{State: state, Data: a.Data}, nil
}

// Encode builds and serializes the command named by kind. Unknown kinds and
// enum names fail before any bytes are produced.
func Encode(kind string, args Args) ([]byte, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	cmd, err := builders[k](args)
	if err != nil {
		return nil, err
	}
	return Marshal(cmd)
}

// EncodePageCommand serializes an Esp32Command carrying a PageCommand.
func EncodePageCommand(req string, fd, bs, n uint32) ([]byte, error) {
	return Encode("page", Args{Request: req, FileDescriptor: fd, BlockSize: bs, NumBytes: n})
}

// EncodeTestCommand serializes an Esp32Command carrying a TestCommand.
func EncodeTestCommand(state string, data int32) ([]byte, error) {
	return Encode("test", Args{State: state, Data: data})
}

// Marshal serializes a typed command.
func Marshal(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, protocol.ErrMissingPayload
	}
	body := wire.NewBuilder(24)
	cmd.encode(body)
	b := wire.NewBuilder(body.Len() + 2)
	b.Message(protowire.Number(cmd.Kind()), body.Bytes())
	return b.Bytes(), nil
}

// Envelope is the structural parse of an Esp32Command. Commands holds one
// entry per distinct variant written, in first-seen order.
type Envelope struct {
	Commands []Command
}

// Parse parses data against the Esp32Command schema without enforcing the
// single-variant invariant.
func Parse(data []byte) (*Envelope, error) {
	fields, err := schema.Parse(schema.MsgEsp32Command, data)
	if err != nil {
		return nil, &protocol.DecodeError{Path: "Esp32Command", Err: err}
	}
	env := &Envelope{}
	seen := make(map[protowire.Number]int, 1)
	for _, f := range fields {
		spec, ok := schema.Lookup(schema.MsgEsp32Command, f.Num)
		if !ok || spec.Oneof != "command" {
			continue
		}
		zero, ok := zeros[spec.Sub]
		if !ok {
			continue
		}
		path := "Esp32Command." + zero.Kind().String()
		sub, err := schema.Parse(spec.Sub, f.Value)
		if err != nil {
			return nil, &protocol.DecodeError{Path: path, Err: err}
		}
		base := zero
		idx, merged := seen[f.Num]
		if merged {
			base = env.Commands[idx]
		}
		cmd, err := base.merge(sub)
		if err != nil {
			return nil, &protocol.DecodeError{Path: path, Err: err}
		}
		if merged {
			env.Commands[idx] = cmd
			continue
		}
		seen[f.Num] = len(env.Commands)
		env.Commands = append(env.Commands, cmd)
	}
	return env, nil
}

// Project enforces that exactly one command variant was written.
func Project(env *Envelope) (Command, error) {
	if env == nil || len(env.Commands) == 0 {
		return nil, protocol.ErrMissingPayload
	}
	if len(env.Commands) > 1 {
		return nil, protocol.ErrAmbiguousPayload
	}
	return env.Commands[0], nil
}

func Decode(data []byte) (Command, error) {
	env, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Project(env)
}

// DecodeMap decodes data into the command's proto field mapping plus "type"
// naming the variant.
func DecodeMap(data []byte) (map[string]any, error) {
	cmd, err := Decode(data)
	if err != nil {
		return nil, err
	}
	out := cmd.Fields()
	out["type"] = cmd.Kind().String()
	return out, nil
}

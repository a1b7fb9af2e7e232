package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/danmuck/spsproto/internal/config"
	"github.com/danmuck/spsproto/internal/logging"
	"github.com/danmuck/spsproto/internal/protocol"
	"github.com/danmuck/spsproto/internal/protocol/command"
	"github.com/danmuck/spsproto/internal/protocol/textfmt"
)

type outputFormat int

const (
	formatHex outputFormat = iota
	formatRaw
	formatC
)

func outputFlags(fs *flag.FlagSet) func() (outputFormat, error) {
	asHex := fs.Bool("hex", false, "print as hex (default)")
	asRaw := fs.Bool("raw", false, "print raw bytes")
	asC := fs.Bool("c", false, "print as a C byte array")
	return func() (outputFormat, error) {
		set := 0
		for _, v := range []bool{*asHex, *asRaw, *asC} {
			if v {
				set++
			}
		}
		if set > 1 {
			return 0, fmt.Errorf("%w: --hex, --raw and --c are mutually exclusive", errUsage)
		}
		switch {
		case *asRaw:
			return formatRaw, nil
		case *asC:
			return formatC, nil
		default:
			return formatHex, nil
		}
	}
}

func writeData(w io.Writer, format outputFormat, data []byte) error {
	var err error
	switch format {
	case formatRaw:
		_, err = w.Write(data)
	case formatC:
		_, err = fmt.Fprintln(w, textfmt.C(data))
	default:
		_, err = fmt.Fprintln(w, textfmt.Hex(data))
	}
	return err
}

func runEncode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := outputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	out, err := format()
	if err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("%w: encode needs a message type", errUsage)
	}

	var data []byte
	switch rest[0] {
	case "measurement":
		data, err = encodeMeasurement(rest[1:])
	case "response":
		data, err = encodeResponse(rest[1:])
	case "esp32command":
		data, err = encodeCommand(rest[1:])
	case "config":
		data, err = encodeConfig(rest[1:])
	default:
		return fmt.Errorf("%w: unknown message type %q", errUsage, rest[0])
	}
	if err != nil {
		return err
	}
	log := logging.For("spsctl")
	log.Debug().Str("message", rest[0]).Int("bytes", len(data)).Msg("encoded")
	return writeData(stdout, out, data)
}

func encodeMeasurement(args []string) ([]byte, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("%w: measurement needs <ts> <cell> <logger> <type>", errUsage)
	}
	ts, err := parseUint32("ts", args[0])
	if err != nil {
		return nil, err
	}
	cell, err := parseUint32("cell", args[1])
	if err != nil {
		return nil, err
	}
	logger, err := parseUint32("logger", args[2])
	if err != nil {
		return nil, err
	}
	kind, vals := args[3], args[4:]

	switch kind {
	case "power":
		f, err := parseFloats(kind, vals, "voltage", "current")
		if err != nil {
			return nil, err
		}
		return protocol.EncodePowerMeasurement(ts, cell, logger, f[0], f[1]), nil
	case "teros12":
		if err := expectArgs(kind, vals, 4); err != nil {
			return nil, err
		}
		f, err := parseFloats(kind, vals[:3], "vwc_raw", "vwc_adj", "temp")
		if err != nil {
			return nil, err
		}
		ec, err := parseUint32("ec", vals[3])
		if err != nil {
			return nil, err
		}
		return protocol.EncodeTeros12Measurement(ts, cell, logger, f[0], f[1], f[2], ec), nil
	case "teros21":
		f, err := parseFloats(kind, vals, "matric_pot", "temp")
		if err != nil {
			return nil, err
		}
		return protocol.EncodeTeros21Measurement(ts, cell, logger, f[0], f[1]), nil
	case "phytos31":
		f, err := parseFloats(kind, vals, "voltage", "leaf_wetness")
		if err != nil {
			return nil, err
		}
		return protocol.EncodePhytos31Measurement(ts, cell, logger, f[0], f[1]), nil
	case "bme280":
		if err := expectArgs(kind, vals, 3); err != nil {
			return nil, err
		}
		pressure, err := parseUint32("pressure", vals[0])
		if err != nil {
			return nil, err
		}
		temperature, err := parseInt32("temperature", vals[1])
		if err != nil {
			return nil, err
		}
		humidity, err := parseUint32("humidity", vals[2])
		if err != nil {
			return nil, err
		}
		return protocol.EncodeBME280Measurement(ts, cell, logger, pressure, temperature, humidity), nil
	default:
		return nil, &protocol.UnsupportedVariantError{Table: "measurement type", Key: kind}
	}
}

func parseFloats(what string, args []string, names ...string) ([]float64, error) {
	if err := expectArgs(what, args, len(names)); err != nil {
		return nil, err
	}
	out := make([]float64, len(names))
	for i, name := range names {
		v, err := parseFloat(name, args[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func encodeResponse(args []string) ([]byte, error) {
	if err := expectArgs("response", args, 1); err != nil {
		return nil, err
	}
	status, err := protocol.ParseResponseType(args[0])
	if err != nil {
		return nil, err
	}
	return protocol.EncodeResponse(status == protocol.ResponseSuccess), nil
}

func encodeCommand(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: esp32command needs a command type", errUsage)
	}
	kind, vals := args[0], args[1:]
	k, err := command.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	var a command.Args
	switch k {
	case command.KindPage:
		if err := expectArgs("page", vals, 4); err != nil {
			return nil, err
		}
		a.Request = vals[0]
		if a.FileDescriptor, err = parseUint32("fd", vals[1]); err != nil {
			return nil, err
		}
		if a.BlockSize, err = parseUint32("bs", vals[2]); err != nil {
			return nil, err
		}
		if a.NumBytes, err = parseUint32("num", vals[3]); err != nil {
			return nil, err
		}
	case command.KindTest:
		if err := expectArgs("test", vals, 2); err != nil {
			return nil, err
		}
		a.State = vals[0]
		if a.Data, err = parseInt32("data", vals[1]); err != nil {
			return nil, err
		}
	}
	return command.Encode(kind, a)
}

func encodeConfig(args []string) ([]byte, error) {
	if err := expectArgs("config", args, 1); err != nil {
		return nil, err
	}
	cfg, err := config.Load(args[0])
	if err != nil {
		return nil, err
	}
	uc, err := config.ToUserConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return protocol.EncodeUserConfiguration(uc), nil
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/danmuck/spsproto/internal/config"
	"github.com/danmuck/spsproto/internal/logging"
	"github.com/danmuck/spsproto/internal/protocol"
	"github.com/danmuck/spsproto/internal/protocol/command"
	"github.com/danmuck/spsproto/internal/protocol/textfmt"
)

func runDecode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	annotated := fs.Bool("annotated", false, "measurement: split data and data_type")
	fromC := fs.Bool("c", false, "input is a C byte array initializer")
	asTOML := fs.Bool("toml", false, "config: print as TOML")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("%w: decode takes <type> <data>", errUsage)
	}
	kind, raw := rest[0], rest[1]

	var data []byte
	var err error
	if *fromC {
		data, err = textfmt.ParseC(raw)
	} else {
		data, err = textfmt.ParseHex(raw)
	}
	if err != nil {
		return err
	}
	log := logging.For("spsctl")
	log.Debug().Str("message", kind).Int("bytes", len(data)).Msg("decoding")

	var out any
	switch kind {
	case "measurement":
		m, err := protocol.DecodeMeasurement(data)
		if err != nil {
			return err
		}
		if *annotated {
			out = m.Annotated()
		} else {
			out = m.Flatten()
		}
	case "response":
		out, err = protocol.DecodeResponse(data)
	case "esp32command":
		out, err = command.DecodeMap(data)
	case "config":
		uc, err := protocol.DecodeUserConfiguration(data)
		if err != nil {
			return err
		}
		if *asTOML {
			text, err := config.Render(config.FromUserConfiguration(uc))
			if err != nil {
				return err
			}
			_, err = stdout.Write(text)
			return err
		}
		out = uc.Fields()
	default:
		return fmt.Errorf("%w: unknown message type %q", errUsage, kind)
	}
	if err != nil {
		return err
	}
	return writeJSON(stdout, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(finite(v))
}

// finite replaces NaN and infinities, which JSON cannot carry, with their
// strconv spelling ("NaN", "+Inf", "-Inf").
func finite(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = finite(e)
		}
		return out
	case protocol.Annotated:
		x.Data = finite(x.Data).(map[string]any)
		return x
	default:
		return v
	}
}

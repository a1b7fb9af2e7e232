package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/danmuck/spsproto/internal/logging"
)

const usage = `usage: spsctl <command> [flags] [args]

commands:
  encode [--hex|--raw|--c] measurement <ts> <cell> <logger> power <voltage> <current>
  encode [--hex|--raw|--c] measurement <ts> <cell> <logger> teros12 <vwc_raw> <vwc_adj> <temp> <ec>
  encode [--hex|--raw|--c] measurement <ts> <cell> <logger> teros21 <matric_pot> <temp>
  encode [--hex|--raw|--c] measurement <ts> <cell> <logger> phytos31 <voltage> <leaf_wetness>
  encode [--hex|--raw|--c] measurement <ts> <cell> <logger> bme280 <pressure> <temperature> <humidity>
  encode [--hex|--raw|--c] response SUCCESS|ERROR
  encode [--hex|--raw|--c] esp32command page <type> <fd> <bs> <num>
  encode [--hex|--raw|--c] esp32command test <state> <data>
  encode [--hex|--raw|--c] config <file.toml>
  decode [--annotated] [--c] [--toml] measurement|response|esp32command|config <data>
  sim [--cell N] [--logger N] [--sensors power,teros12] [--start ts] [--end ts] [--step s] [--hex|--c]
`

var errUsage = errors.New("invalid arguments")

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fatalf("%v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdout)
	case "decode":
		return runDecode(args[1:], stdout)
	case "sim":
		return runSim(args[1:], stdout)
	case "help", "-h", "--help":
		_, err := fmt.Fprint(stdout, usage)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "spsctl: "+format+"\n", args...)
	os.Exit(1)
}

func parseUint32(name, raw string) (uint32, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", errUsage, name, raw, err)
	}
	return uint32(v), nil
}

func parseInt32(name, raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", errUsage, name, raw, err)
	}
	return int32(v), nil
}

func parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", errUsage, name, raw, err)
	}
	return v, nil
}

func expectArgs(what string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", errUsage, what, n, len(args))
	}
	return nil
}

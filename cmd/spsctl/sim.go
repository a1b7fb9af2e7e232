package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/spsproto/internal/sim"
)

func runSim(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cell := uint32Var(fs, "cell", 1, "cell id")
	logger := uint32Var(fs, "logger", 1, "logger id")
	sensors := fs.String("sensors", "power", "comma-separated sensors: power,teros12,teros21,bme280")
	start := uint32Var(fs, "start", 0, "first timestamp (default now)")
	end := uint32Var(fs, "end", 0, "last timestamp (default start)")
	step := uint32Var(fs, "step", 60, "seconds between samples")
	format := outputFlags(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	out, err := format()
	if err != nil {
		return err
	}
	if out == formatRaw {
		return fmt.Errorf("%w: sim prints one message per line; use --hex or --c", errUsage)
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: sim takes no positional arguments", errUsage)
	}

	from := *start
	if from == 0 {
		from = uint32(time.Now().Unix())
	}
	to := *end
	if to == 0 {
		to = from
	}

	s, err := sim.New(*cell, *logger, strings.Split(*sensors, ","), nil)
	if err != nil {
		return err
	}
	batch, err := s.Range(from, to, *step)
	if err != nil {
		return err
	}
	for _, data := range batch {
		if err := writeData(stdout, out, data); err != nil {
			return err
		}
	}
	return nil
}

// uint32Flag is a flag.Value that rejects values outside the uint32 range
// instead of wrapping them.
type uint32Flag uint32

func uint32Var(fs *flag.FlagSet, name string, value uint32, usage string) *uint32 {
	p := new(uint32)
	*p = value
	fs.Var((*uint32Flag)(p), name, usage)
	return p
}

func (f *uint32Flag) String() string {
	if f == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*f), 10)
}

func (f *uint32Flag) Set(s string) error {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*f = uint32Flag(v)
	return nil
}

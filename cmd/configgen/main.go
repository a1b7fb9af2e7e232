package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/spsproto/internal/config"
	"github.com/danmuck/spsproto/internal/logging"
	"github.com/danmuck/spsproto/internal/protocol"
	"github.com/danmuck/spsproto/internal/protocol/textfmt"
)

const defaultPath = "config.toml"

func main() {
	logging.ConfigureRuntime()
	log := logging.For("configgen")
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("configgen failed")
	}
}

// run writes a template, or with -validate loads, encodes and prints the hex
// of an existing file.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("configgen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	output := fs.String("output", defaultPath, "output path for config template")
	validate := fs.Bool("validate", false, "validate an existing config file")
	input := fs.String("input", defaultPath, "config path for validation")
	force := fs.Bool("force", false, "overwrite existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	log := logging.For("configgen")

	if *validate {
		cfg, err := config.Load(*input)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		uc, err := config.ToUserConfiguration(cfg)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		data := protocol.EncodeUserConfiguration(uc)
		log.Info().
			Str("path", *input).
			Int("bytes", len(data)).
			Msg("validated user config")
		_, err = fmt.Fprintln(stdout, textfmt.Hex(data))
		return err
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		return fmt.Errorf("write template failed: %w", err)
	}
	log.Info().Str("path", *output).Msg("wrote user config template")
	return nil
}

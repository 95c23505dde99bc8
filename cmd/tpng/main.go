package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dgryski/go-tinypng"
)

const defaultTerminalWidth = 80

func main() {
	cfg, err := NewConfig(os.Args[1:])
	if err != nil {
		fmt.Println("ERROR: ", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logrus.Errorf("error during run: %s", err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: cfg.CLI.DisableColor,
		FullTimestamp: true,
	})

	if cfg.CLI.Quiet {
		logrus.SetLevel(logrus.WarnLevel)
	}

	if cfg.CLI.Debug {
		logrus.Info("debug mode enabled")
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cfg.CLI.CPUProfile != "" {
		f, err := os.Create(cfg.CLI.CPUProfile)
		if err != nil {
			return errors.Wrap(err, "unable to create cpu profile")
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "unable to start cpu profile")
		}
		defer pprof.StopCPUProfile()
	}

	displayConfig(cfg)

	dec := &tinypng.Decoder{Strict: cfg.CLI.Strict}

	switch cfg.Command() {
	case "inflate":
		return inflate(dec, cfg.CLI.Inflate.Raw, os.Stdin, os.Stdout)
	default:
		width := cfg.CLI.Print.Width
		if width == 0 {
			width = terminalWidth(os.Stdout)
		}

		s := &scanner{
			dec:    dec,
			render: newRenderer(os.Stdout, width, cfg.CLI.Print.Resample),
		}
		return s.Run(cfg.CLI.Print.Paths)
	}
}

func inflate(dec *tinypng.Decoder, raw bool, r io.Reader, w io.Writer) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "error during read")
	}

	var out []byte
	if raw {
		out, err = dec.Inflate(buf)
	} else {
		out, err = dec.Decompress(buf)
	}
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(out); err != nil {
		return errors.Wrap(err, "error during write")
	}
	return bw.Flush()
}

func displayConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	logrus.Debug("tpng settings:")
	logrus.Debugf("  version: %s", VERSION)
	logrus.Debugf("  command: %s", cfg.Command())
	logrus.Debugf("  config file: %s", cfg.CLI.ConfigFile)
	logrus.Debugf("  strict: %v", cfg.CLI.Strict)
	logrus.Debugf("  width: %d", cfg.CLI.Print.Width)
	logrus.Debugf("  resample: %s", cfg.CLI.Print.Resample)
	logrus.Debugf("  paths: %v", cfg.CLI.Print.Paths)
}

package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	EnvVarPrefix = "TPNG"

	DefaultResample = "area"

	MinWidth = 0
	MaxWidth = 4096
)

var (
	// VERSION gets set during build
	VERSION = "0.0.0"

	validResamples = map[string]struct{}{
		"nearest": {},
		"area":    {},
	}
)

type Config struct {
	CLI  *CLI
	TOML *TOML
}

type TOML struct {
	Render *TOMLRender `toml:"render"`
	Decode *TOMLDecode `toml:"decode"`
}

type TOMLRender struct {
	Width    int    `toml:"width"`
	Resample string `toml:"resample"`
}

type TOMLDecode struct {
	Strict bool `toml:"strict"`
}

type PrintCmd struct {
	Paths    []string `kong:"arg,optional,help='PNG files or directories to print',default='./test_images'"`
	Width    int      `kong:"help='Output width in terminal columns (0 = terminal width)',short='w'"`
	Resample string   `kong:"help='Resampling filter: nearest or area',short='r'"`
}

type InflateCmd struct {
	Raw bool `kong:"help='Input is a raw DEFLATE stream rather than zlib'"`
}

type CLI struct {
	Print   PrintCmd   `kong:"cmd,default='withargs',help='Decode PNG images and print them to the terminal'"`
	Inflate InflateCmd `kong:"cmd,help='Decompress stdin to stdout'"`

	ConfigFile   string `kong:"help='Path to an optional TOML config file',type='path',short='c'"`
	Strict       bool   `kong:"help='Verify zlib, stored block and chunk checksums',short='s'"`
	CPUProfile   string `kong:"name='cpuprofile',help='Write a CPU profile to this file'"`
	DisableColor bool   `kong:"help='Disable color log output',short='C'"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Quiet   bool             `kong:"help='Only log warnings and errors',short='q'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`

	// Internal bits
	Ctx *kong.Context `kong:"-"`
}

func NewConfig(args []string) (*Config, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	cli, err := readCLIArgs(args)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing CLI args")
	}

	tomlConfig := &TOML{}
	if cli.ConfigFile != "" {
		tomlConfig, err = readTOML(cli.ConfigFile)
		if err != nil {
			return nil, errors.Wrap(err, "error reading config file")
		}
	} else if err := setTOMLDefaults(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error setting TOML defaults")
	}

	cfg := &Config{
		CLI:  cli,
		TOML: tomlConfig,
	}

	applyTOML(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Command returns the selected subcommand without its arguments.
func (c *Config) Command() string {
	if c.CLI.Ctx == nil {
		return "print"
	}

	cmd := c.CLI.Ctx.Command()
	for i, r := range cmd {
		if r == ' ' {
			return cmd[:i]
		}
	}

	return cmd
}

func setTOMLDefaults(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if t.Render == nil {
		t.Render = &TOMLRender{}
	}

	if t.Decode == nil {
		t.Decode = &TOMLDecode{}
	}

	if t.Render.Resample == "" {
		t.Render.Resample = DefaultResample
	}

	return nil
}

// applyTOML fills in whatever was not given on the command line.
func applyTOML(c *Config) {
	if c.CLI.Print.Width == 0 {
		c.CLI.Print.Width = c.TOML.Render.Width
	}

	if c.CLI.Print.Resample == "" {
		c.CLI.Print.Resample = c.TOML.Render.Resample
	}

	if !c.CLI.Strict {
		c.CLI.Strict = c.TOML.Decode.Strict
	}
}

func Validate(c *Config) error {
	if c == nil || c.CLI == nil {
		return errors.New("config cannot be nil")
	}

	if err := validateCLIArgs(c.CLI); err != nil {
		return errors.Wrap(err, "error validating CLI args")
	}

	if err := validateTOML(c.TOML); err != nil {
		return errors.Wrap(err, "error validating toml config")
	}

	return nil
}

func validateTOML(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if t.Render == nil {
		return errors.New("render cannot be empty")
	}

	if t.Decode == nil {
		return errors.New("decode cannot be empty")
	}

	if t.Render.Width < MinWidth || t.Render.Width > MaxWidth {
		return errors.Errorf("render.width must be between %d and %d", MinWidth, MaxWidth)
	}

	if _, ok := validResamples[t.Render.Resample]; !ok {
		return errors.Errorf("render.resample %s is invalid", t.Render.Resample)
	}

	return nil
}

func validateCLIArgs(cli *CLI) error {
	if cli == nil {
		return errors.New("config cannot be nil")
	}

	if cli.Print.Width < MinWidth || cli.Print.Width > MaxWidth {
		return errors.Errorf("--width must be between %d and %d", MinWidth, MaxWidth)
	}

	if cli.Print.Resample != "" {
		if _, ok := validResamples[cli.Print.Resample]; !ok {
			return errors.Errorf("--resample %s is invalid", cli.Print.Resample)
		}
	}

	return nil
}

func readCLIArgs(args []string) (*CLI, error) {
	cli := &CLI{}

	parser, err := kong.New(cli,
		kong.Name("tpng"),
		kong.Description("Print PNG images to a truecolor terminal"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": VERSION,
		})
	if err != nil {
		return nil, errors.Wrap(err, "error building CLI parser")
	}

	cli.Ctx, err = parser.Parse(args)
	if err != nil {
		return nil, err
	}

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}

	return cli, nil
}

func readTOML(file string) (*TOML, error) {
	// Attempt to load file
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "error reading file")
	}

	tomlConfig := &TOML{}

	if err := toml.Unmarshal(data, tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error parsing TOML config")
	}

	// Set defaults
	if err := setTOMLDefaults(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error setting TOML defaults")
	}

	// Validate loaded config
	if err := validateTOML(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error validating TOML config")
	}

	return tomlConfig, nil
}

package main

import (
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/arguskv/argus/internal/config"
)

// options holds the parsed command-line flags.
type options struct {
	configPath string
	verb       string
	verbArgs   []string
}

// parseFlags parses argus's flags. If a verb (get/set/del/keys/count/uid)
// and its arguments follow the flags, options.verb is non-empty and the
// caller should dispatch a single operation instead of starting the REPL.
func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("argus", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{}) // discard pflag's own error/usage output

	configPath := fs.StringP("config", "c", "", "engine config file (HuJSON); falls back to an in-process default")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	rest := fs.Args()

	var opts options

	opts.configPath = *configPath

	if len(rest) > 0 {
		opts.verb = rest[0]
		opts.verbArgs = rest[1:]
	}

	return opts, nil
}

// loadConfig loads the engine configuration from path, or returns the
// built-in default when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	return config.Load(path)
}

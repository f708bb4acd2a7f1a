// argus is a small demo CLI for the LSM engine and UID builder: it loads an
// engine configuration, then either runs one verb (get/set/del/keys/count/
// uid) given as arguments after the flags, or drops into an interactive
// line-editing loop.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	engine, builder, strict, err := cfg.Build()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	app := &app{engine: engine, builder: builder, strict: strict, out: out}

	if opts.verb != "" {
		if err := app.dispatch(opts.verb, opts.verbArgs); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}

		return 0
	}

	repl := &repl{app: app}

	return repl.run()
}

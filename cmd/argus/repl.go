package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// repl is the interactive line-editing loop: a thin whitespace-splitting
// dispatcher over the same verbs as the one-shot CLI mode, nothing more.
type repl struct {
	app   *app
	liner *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".argus_history")
}

func (r *repl) run() int {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintln(r.app.out, "argus - LSM engine demo. Type 'help' for commands.")

	for {
		line, err := r.liner.Prompt("argus> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Fprintln(r.app.out, "\nbye")
				break
			}

			fmt.Fprintln(os.Stderr, "error:", err)

			return 1
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		verb, args := parts[0], parts[1:]

		switch verb {
		case "exit", "quit", "q":
			r.saveHistory()
			return 0

		case "help", "?":
			printHelp(r.app.out)

		default:
			if err := r.app.dispatch(verb, args); err != nil {
				fmt.Fprintln(r.app.out, "error:", err)
			}
		}
	}

	r.saveHistory()

	return 0
}

func (r *repl) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		r.liner.WriteHistory(f)
		f.Close()
	}
}

func completer(line string) []string {
	verbs := []string{"get", "set", "del", "keys", "count", "uid", "help", "exit", "quit"}

	var out []string

	for _, v := range verbs {
		if strings.HasPrefix(v, line) {
			out = append(out, v)
		}
	}

	return out
}

func printHelp(out *os.File) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  get <key>          Read a key")
	fmt.Fprintln(out, "  set <key> <value>  Write a key")
	fmt.Fprintln(out, "  del <key>          Tombstone a key")
	fmt.Fprintln(out, "  keys               Show layer depth and count")
	fmt.Fprintln(out, "  count              Show total record count")
	fmt.Fprintln(out, "  uid                Generate and print a new UID")
	fmt.Fprintln(out, "  help               Show this help")
	fmt.Fprintln(out, "  exit / quit / q    Exit")
}

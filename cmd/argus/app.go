package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/arguskv/argus/pkg/lsm"
	"github.com/arguskv/argus/pkg/uid"
)

// app holds the engine and UID builder shared by both the one-shot verb
// dispatch and the REPL. strict mirrors the config's uid.strict field: when
// set, the "uid" verb enforces strictly-increasing generation instead of
// plain Gen.
type app struct {
	engine  *lsm.Engine
	builder *uid.Builder
	strict  bool
	out     *os.File
}

// dispatch runs one verb (get/set/del/keys/count/uid) against a.
func (a *app) dispatch(verb string, args []string) error {
	switch verb {
	case "get":
		return a.cmdGet(args)
	case "set":
		return a.cmdSet(args)
	case "del":
		return a.cmdDel(args)
	case "keys":
		return a.cmdKeys(args)
	case "count":
		return a.cmdCount()
	case "uid":
		return a.cmdUID()
	default:
		return fmt.Errorf("unknown command %q (get|set|del|keys|count|uid)", verb)
	}
}

func (a *app) cmdGet(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get <key>")
	}

	payload, ok, err := a.engine.Get([]byte(args[0]))
	if err != nil {
		return err
	}

	if !ok {
		fmt.Fprintln(a.out, "(not found)")
		return nil
	}

	fmt.Fprintf(a.out, "%s\n", payload)

	return nil
}

func (a *app) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <key> <value>")
	}

	if err := a.engine.Set([]byte(args[0]), []byte(args[1])); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "OK")

	return nil
}

func (a *app) cmdDel(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: del <key>")
	}

	deleted, err := a.engine.Del([]byte(args[0]))
	if err != nil {
		return err
	}

	if deleted {
		fmt.Fprintln(a.out, "OK: deleted")
	} else {
		fmt.Fprintln(a.out, "OK: did not exist")
	}

	return nil
}

// cmdKeys does not list keys: only layer.Layer (not *lsm.Engine) exposes
// Keys, so it reports the engine's depth and total count instead.
func (a *app) cmdKeys(_ []string) error {
	fmt.Fprintf(a.out, "engine has %d layer(s), %d total record(s) (see 'count')\n", a.engine.Depth(), a.engine.Count())
	return nil
}

func (a *app) cmdCount() error {
	fmt.Fprintf(a.out, "%d\n", a.engine.Count())
	return nil
}

func (a *app) cmdUID() error {
	u, err := a.builder.GenByStrict(a.strict)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n", u)
	fmt.Fprintf(a.out, "  %s\n", u.DebugString())
	fmt.Fprintf(a.out, "  raw: %s\n", hex.EncodeToString(u[:]))

	return nil
}

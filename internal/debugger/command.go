package debugger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Kind uint8

const (
	Repeat Kind = iota
	Step
	Exit
	Regs
	Mem
	Dis
	Info
)

// Command is one parsed debugger line.
type Command struct {
	Kind  Kind
	Count int
	Addr  uint16
}

var ErrNoLastCommand = errors.New("no last command")

// Parse decodes a line. An empty line parses as Repeat.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: Repeat}, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "step", "s":
		n, err := countArg(args, 1)
		return Command{Kind: Step, Count: n}, err
	case "exit", "quit", "e", "q":
		return Command{Kind: Exit}, noArgs(name, args)
	case "regs", "r":
		return Command{Kind: Regs}, noArgs(name, args)
	case "info":
		return Command{Kind: Info}, noArgs(name, args)
	case "dis", "d":
		n, err := countArg(args, 5)
		return Command{Kind: Dis, Count: n}, err
	case "mem", "x":
		if len(args) == 0 {
			return Command{}, fmt.Errorf("%s: missing address", name)
		}
		addr, err := parseAddr(args[0])
		if err != nil {
			return Command{}, err
		}
		n, err := countArg(args[1:], 16)
		return Command{Kind: Mem, Addr: addr, Count: n}, err
	}
	return Command{}, fmt.Errorf("unable to parse command: %q", line)
}

func noArgs(name string, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%s takes no arguments", name)
	}
	return nil
}

func countArg(args []string, def int) (int, error) {
	switch len(args) {
	case 0:
		return def, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("bad count %q", args[0])
		}
		return n, nil
	}
	return 0, fmt.Errorf("too many arguments: %s", strings.Join(args, " "))
}

// parseAddr accepts hex with an optional $ or 0x prefix.
func parseAddr(s string) (uint16, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "$"), "0x")
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", s)
	}
	return uint16(v), nil
}

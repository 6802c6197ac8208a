// Package console reads operator commands from a text stream and runs them on the simulation goroutine.
package console

import (
	"bufio"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/blockshard/engine"
)

var (
	ErrUnknownCommand   = eris.New("unknown command")
	ErrDuplicateCommand = eris.New("command already registered")
	ErrUsage            = eris.New("bad command usage")
)

// Reader collects whole lines from an io.Reader on its own goroutine. The simulation drains them once per tick
// with Lines, which never blocks.
type Reader struct {
	mu    sync.Mutex
	lines []string
	done  chan struct{}
}

// NewReader starts reading r until EOF or a read error.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{done: make(chan struct{})}
	go rd.run(r)
	return rd
}

func (rd *Reader) run(r io.Reader) {
	defer close(rd.done)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rd.mu.Lock()
		rd.lines = append(rd.lines, line)
		rd.mu.Unlock()
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("console input closed")
	}
}

// Lines returns the lines read since the last call.
func (rd *Reader) Lines() []string {
	rd.mu.Lock()
	defer rd.mu.Unlock()
	out := rd.lines
	rd.lines = nil
	return out
}

// Done is closed once the input is exhausted.
func (rd *Reader) Done() <-chan struct{} {
	return rd.done
}

// Command runs one console command. args excludes the command name.
type Command func(wCtx engine.Context, args []string) error

// Table maps command names to commands.
type Table struct {
	commands map[string]Command
}

func NewTable() *Table {
	return &Table{commands: make(map[string]Command)}
}

func (t *Table) Register(name string, cmd Command) error {
	if _, ok := t.commands[name]; ok {
		return eris.Wrapf(ErrDuplicateCommand, "command %q", name)
	}
	t.commands[name] = cmd
	return nil
}

// Names returns the registered command names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch splits line into fields and runs the named command.
func (t *Table) Dispatch(wCtx engine.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := t.commands[fields[0]]
	if !ok {
		return eris.Wrapf(ErrUnknownCommand, "%q", fields[0])
	}
	if err := cmd(wCtx, fields[1:]); err != nil {
		return eris.Wrapf(err, "command %q", fields[0])
	}
	return nil
}

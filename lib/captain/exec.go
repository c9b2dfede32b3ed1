// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package captain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/process"
	"github.com/bureau-foundation/armada/lib/ship"
)

// ExecSpawner starts each ship as a child process running
// "<Binary> ship ...". Stdin is the command channel, stdout the
// response channel, and stderr is shared with the captain so ship logs
// reach the operator.
type ExecSpawner struct {
	// Binary is the armada executable. Empty means the running binary.
	Binary string

	// MapPath is loaded by every ship; MapDigest lets the ship verify
	// it saw the same chart as the captain.
	MapPath   string
	MapDigest string

	// BusPath is ursula's FIFO. Empty runs ships without a bus.
	BusPath string

	// Food overrides the starting food when positive.
	Food int

	// LogLevel is passed through to each ship.
	LogLevel string

	Logger *slog.Logger

	// Signaler delivers control signals. Nil means kill(2).
	Signaler control.Signaler
}

func (s *ExecSpawner) binary() (string, error) {
	if s.Binary != "" {
		return s.Binary, nil
	}
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving own executable: %w", err)
	}
	return executable, nil
}

// Arguments returns the ship command line for spec, without the binary.
func (s *ExecSpawner) Arguments(spec ShipSpec) []string {
	args := []string{
		"ship",
		"--map", s.MapPath,
		"--x", strconv.Itoa(spec.X),
		"--y", strconv.Itoa(spec.Y),
	}
	if s.MapDigest != "" {
		args = append(args, "--map-digest", s.MapDigest)
	}
	if s.BusPath != "" {
		args = append(args, "--bus", s.BusPath)
	}
	if s.Food > 0 {
		args = append(args, "--food", strconv.Itoa(s.Food))
	}
	if s.LogLevel != "" {
		args = append(args, "--log-level", s.LogLevel)
	}
	if spec.Mode == ship.Autonomous {
		args = append(args,
			"--random",
			"--steps", strconv.Itoa(spec.Steps),
			"--period", spec.Period.String(),
		)
	} else {
		args = append(args, "--captain")
	}
	return args
}

// Spawn starts one ship process.
//
// The pipes are created with os.Pipe rather than cmd.StdoutPipe:
// exec.Cmd.Wait closes pipes it created, which would race the
// captain's reader and lose the ship's final lines. Here the reader end
// reaches EOF naturally when the child exits.
func (s *ExecSpawner) Spawn(ctx context.Context, spec ShipSpec) (Handle, error) {
	binary, err := s.binary()
	if err != nil {
		return nil, err
	}

	commandReader, commandWriter, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating command pipe: %w", err)
	}
	responseReader, responseWriter, err := os.Pipe()
	if err != nil {
		commandReader.Close()
		commandWriter.Close()
		return nil, fmt.Errorf("creating response pipe: %w", err)
	}

	cmd := exec.Command(binary, s.Arguments(spec)...)
	cmd.Stdin = commandReader
	cmd.Stdout = responseWriter
	cmd.Stderr = os.Stderr
	// Own process group: a terminal ^C reaches the captain only, and
	// the captain decides how the fleet winds down.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	startErr := cmd.Start()
	// The child holds its own copies now.
	commandReader.Close()
	responseWriter.Close()
	if startErr != nil {
		commandWriter.Close()
		responseReader.Close()
		return nil, fmt.Errorf("starting ship %d: %w", spec.ID, startErr)
	}

	signaler := s.Signaler
	if signaler == nil {
		signaler = control.UnixSignaler{}
	}
	return &execHandle{
		cmd:       cmd,
		commands:  commandWriter,
		responses: responseReader,
		signaler:  signaler,
	}, nil
}

type execHandle struct {
	cmd       *exec.Cmd
	commands  *os.File
	responses *os.File
	signaler  control.Signaler
}

func (h *execHandle) PID() int              { return h.cmd.Process.Pid }
func (h *execHandle) Directives() io.Writer { return h.commands }
func (h *execHandle) Responses() io.Reader  { return h.responses }

func (h *execHandle) Signal(sig control.Signal) error {
	return h.signaler.Send(h.PID(), sig)
}

func (h *execHandle) Wait() process.ExitStatus {
	err := h.cmd.Wait()
	return process.DecodeExit(h.cmd.ProcessState, err)
}

func (h *execHandle) Close() error {
	return h.commands.Close()
}

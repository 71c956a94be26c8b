package led

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const commandTimeout = 2 * time.Second

// command implements Controller by running board-specific scripts,
// e.g. "/usr/bin/greenled.sh 1".
type command struct {
	on     []string
	off    []string
	logger *slog.Logger
}

func newCommand(on, off string, logger *slog.Logger) (*command, error) {
	onArgs := strings.Fields(on)
	offArgs := strings.Fields(off)
	if len(onArgs) == 0 || len(offArgs) == 0 {
		return nil, fmt.Errorf("command backend needs both on and off commands")
	}
	return &command{on: onArgs, off: offArgs, logger: logger}, nil
}

// Enable runs the on command
func (c *command) Enable() error {
	return c.run(c.on)
}

// Disable runs the off command
func (c *command) Disable() error {
	return c.run(c.off)
}

// Name returns the controller name
func (c *command) Name() string {
	return "command:" + c.on[0]
}

func (c *command) run(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		c.logger.Debug("LED command output", "args", args, "output", string(out))
		return fmt.Errorf("LED command %q failed: %w", args[0], err)
	}
	return nil
}

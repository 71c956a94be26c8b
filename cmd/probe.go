package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/blnd/internal/led"
	"github.com/smazurov/blnd/internal/suspend"
	"github.com/smazurov/blnd/internal/wakelock"
	"github.com/spf13/cobra"
)

// CreateProbeCmd creates the probe command.
func CreateProbeCmd() *cobra.Command {
	var ledRoot, powerPath, blankPath string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Show what auto-detection would pick on this system",
		Long: `Lists LED class devices and reports the backlight, wakelock and display ` +
			`suspend backends the daemon selects in auto mode. Nothing is written.`,
		Args: cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			out := c.OutOrStdout()

			devices := led.Available(ledRoot)
			fmt.Fprintf(out, "LED devices (%d):\n", len(devices))
			for _, d := range devices {
				fmt.Fprintf(out, "  %s\n", d)
			}

			backlight := led.Detect(ledRoot)
			if backlight == "" {
				backlight = "none"
			}
			fmt.Fprintf(out, "Backlight:  %s\n", backlight)
			fmt.Fprintf(out, "Wakelock:   %s\n", wakelock.Detect(powerPath))
			fmt.Fprintf(out, "Suspend:    %s\n", suspend.Detect(blankPath))
			if blankPath == "" {
				blankPath = suspend.DetectBlankPath()
			}
			if blankPath != "" {
				fmt.Fprintf(out, "Blank file: %s\n", blankPath)
			}

			if len(devices) == 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&ledRoot, "led-root", "", "LED class root (default /sys/class/leds)")
	cmd.Flags().StringVar(&powerPath, "power-path", "", "Wakelock interface root (default /sys/power)")
	cmd.Flags().StringVar(&blankPath, "blank-path", "", "Display blank file (auto-detected when empty)")

	return cmd
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/smazurov/blnd/internal/client"
	"github.com/spf13/cobra"
)

// CreateAttrCmd creates the attr command with get, set and list
// subcommands for a running daemon.
func CreateAttrCmd() *cobra.Command {
	var server, username, password string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "attr",
		Short: "Read and write attributes of a running daemon",
	}
	cmd.PersistentFlags().StringVarP(&server, "server", "s", "http://localhost:8095", "Daemon base URL")
	cmd.PersistentFlags().StringVarP(&username, "user", "u", os.Getenv("BLND_AUTH_USERNAME"), "Basic auth username")
	cmd.PersistentFlags().StringVar(&password, "password", os.Getenv("BLND_AUTH_PASSWORD"), "Basic auth password")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")

	run := func(fn func(ctx context.Context, c *client.Client) error) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx, client.New(server, username, password))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every attribute",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return run(func(ctx context.Context, cl *client.Client) error {
				attrs, err := cl.List(ctx)
				if err != nil {
					return err
				}
				for _, a := range attrs {
					mode := "ro"
					if a.Writable {
						mode = "rw"
					}
					fmt.Fprintf(c.OutOrStdout(), "%-18s %s %s\n", a.Name, mode, strings.TrimSpace(a.Value))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Print one attribute",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cl *client.Client) error {
				a, err := cl.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(c.OutOrStdout(), a.Value)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Write an attribute",
		Long: `Writes value to the attribute. Values the daemon rejects are ignored, ` +
			`so the value read back afterwards is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cl *client.Client) error {
				res, err := cl.Set(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprint(c.OutOrStdout(), res.Value)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "display <blank|unblank>",
		Short:     "Report a display edge",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"blank", "unblank"},
		RunE: func(c *cobra.Command, args []string) error {
			var suspended bool
			switch args[0] {
			case "blank":
				suspended = true
			case "unblank":
			default:
				return fmt.Errorf("expected blank or unblank, got %q", args[0])
			}
			return run(func(ctx context.Context, cl *client.Client) error {
				st, err := cl.SetDisplay(ctx, suspended)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "mode=%s display_suspended=%t\n", st.Mode, st.DisplaySuspended)
				return nil
			})
		},
	})

	return cmd
}

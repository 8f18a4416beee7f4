package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toast/internal/errors"
	"github.com/vango-dev/toast/pkg/server"
)

func pushCmd() *cobra.Command {
	var (
		addr     string
		typ      string
		position string
		duration string
		icon     string
		sticky   bool
	)

	cmd := &cobra.Command{
		Use:   "push <message>",
		Short: "Show a toast on a running server",
		Long: `Show a toast on a running server.

Options that are not given fall back to the server defaults.

Examples:
  toastd push "Saved"
  toastd push --type=error "Upload failed"
  toastd push --type=loading --sticky "Deploying..."
  toastd push --position=bottom-center --duration=2s "Copied"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := server.ToastRequest{
				Type:    typ,
				Message: strings.Join(args, " "),
			}
			if position != "" {
				req.Position = &position
			}
			if sticky {
				duration = "0"
			}
			if duration != "" {
				ms, err := parseDurationFlag(duration)
				if err != nil {
					return err
				}
				req.DurationMs = &ms
			}
			if cmd.Flags().Changed("icon") {
				req.Icon = &icon
			}

			t, err := newAPIClient(addr).push(cmd.Context(), req)
			if err != nil {
				return err
			}
			success("Toast %d shown (%s, %s)", t.ID, t.Type, t.Position)
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Server address (default localhost:4310)")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Toast type: default, info, success, warning, error, loading")
	cmd.Flags().StringVarP(&position, "position", "p", "", "Screen position, e.g. top-end")
	cmd.Flags().StringVarP(&duration, "duration", "d", "", "Time on screen, e.g. 3s or 1500 (ms)")
	cmd.Flags().StringVar(&icon, "icon", "", `Icon: "builtin:<name>", "url:<address>" or "none"`)
	cmd.Flags().BoolVar(&sticky, "sticky", false, "Keep the toast until it is dismissed")

	return cmd
}

// parseDurationFlag accepts a Go duration or a bare number of milliseconds.
func parseDurationFlag(s string) (int64, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.New("E203").
			WithDetailf("%q is not a duration", s).
			WithSuggestion("Use a value such as 3s, 500ms or 0 for sticky")
	}
	return d.Milliseconds(), nil
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toast/internal/errors"
)

func listCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the toasts on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			toasts, err := newAPIClient(addr).list(cmd.Context())
			if err != nil {
				return err
			}
			if len(toasts) == 0 {
				info("No active toasts")
				return nil
			}
			for _, t := range toasts {
				msg := t.Message
				if msg == "" {
					msg = "<" + t.Component + ">"
				}
				life := "sticky"
				if t.DurationMs > 0 {
					life = (time.Duration(t.DurationMs) * time.Millisecond).String()
				}
				fmt.Printf("  %4d  %-8s %-14s %-8s %s\n", t.ID, t.Type, t.Position, life, msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Server address (default localhost:4310)")
	return cmd
}

func dismissCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss one toast on a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New("E206").WithDetailf("%q is not a toast id", args[0])
			}
			if err := newAPIClient(addr).dismiss(cmd.Context(), id); err != nil {
				return err
			}
			success("Toast %d dismissed", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Server address (default localhost:4310)")
	return cmd
}

func clearCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Dismiss every toast on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := newAPIClient(addr).clear(cmd.Context())
			if err != nil {
				return err
			}
			success("Cleared %d toasts", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Server address (default localhost:4310)")
	return cmd
}

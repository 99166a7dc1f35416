package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fitlog/internal/app"
)

func newSessionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions [date]",
		Short: "Print workout sessions as text, or only the one on date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				svc := b.services().Summary
				w := cmd.OutOrStdout()
				if len(args) == 1 {
					sess, err := svc.Session(cmd.Context(), c.cfg.UserID, args[0], c.today())
					if err != nil {
						return err
					}
					if sess == nil {
						return fmt.Errorf("no session on %s: %w", args[0], app.ErrNotFound)
					}
					fmt.Fprint(w, app.SessionText(*sess))
					return nil
				}
				sessions, err := svc.Sessions(cmd.Context(), c.cfg.UserID, c.today())
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Fprintln(w, "No hay sesiones registradas.")
				}
				for _, s := range sessions {
					fmt.Fprint(w, app.SessionText(s))
				}
				return nil
			})
		},
	}
	return cmd
}

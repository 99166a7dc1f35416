package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fitlog/internal/app"
)

func newNotesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Training notes (consejos)",
	}
	cmd.AddCommand(newNotesListCmd(c), newNotesAddCmd(c), newNotesDeleteCmd(c))
	return cmd
}

func newNotesListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				notes, err := b.services().Notes.List(cmd.Context(), c.cfg.UserID)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, n := range notes {
					fmt.Fprintf(w, "[%s] %s  %s\n", n.ID, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title)
					if n.Content != "" {
						fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(n.Content, "\n", "\n    "))
					}
					if len(n.Media) > 0 {
						fmt.Fprintf(w, "    adjuntos: %d\n", len(n.Media))
					}
					for _, l := range n.VideoLinks {
						fmt.Fprintf(w, "    %s: %s\n", l.Name, l.URL)
					}
				}
				return nil
			})
		},
	}
}

func newNotesAddCmd(c *cli) *cobra.Command {
	var (
		title   string
		content string
		links   []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				form := app.NoteForm{Title: title, Content: content}
				for _, u := range links {
					form.VideoLinks, _ = app.AppendVideoLink(form.VideoLinks, u)
				}
				n, err := b.services().Notes.Add(cmd.Context(), c.cfg.UserID, form)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note body")
	cmd.Flags().StringArrayVar(&links, "link", nil, "video link (repeatable)")
	return cmd
}

func newNotesDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				return b.services().Notes.Remove(cmd.Context(), c.cfg.UserID, args[0])
			})
		},
	}
}

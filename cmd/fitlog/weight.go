package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fitlog/internal/app"
	"fitlog/internal/view"
)

// weightFlags holds the editable fields; only flags the user set are applied.
type weightFlags struct {
	values map[view.Field]*string
}

func (f *weightFlags) register(cmd *cobra.Command) {
	f.values = make(map[view.Field]*string, len(view.Fields))
	for _, field := range view.Fields {
		f.values[field] = cmd.Flags().String(string(field), "", "")
	}
}

func (f *weightFlags) apply(cmd *cobra.Command, ctrl *view.HistoryController) error {
	for _, field := range view.Fields {
		if !cmd.Flags().Changed(string(field)) {
			continue
		}
		if err := ctrl.SetField(field, *f.values[field]); err != nil {
			return err
		}
	}
	return nil
}

func newWeightCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight",
		Short: "Body weight history (peso)",
	}
	cmd.AddCommand(newWeightListCmd(c), newWeightAddCmd(c), newWeightEditCmd(c), newWeightDeleteCmd(c))
	return cmd
}

func newWeightListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				svc := b.services()
				items, err := view.NewHistoryController(svc.Weight, c.cfg.UserID).History(cmd.Context())
				if err != nil {
					return err
				}
				goal, err := svc.Weight.FatGoal(cmd.Context(), c.cfg.UserID)
				if err != nil {
					return err
				}
				return printHistory(cmd.OutOrStdout(), items, goal)
			})
		},
	}
}

func printHistory(w io.Writer, items []app.HistoryItem, goal *app.FatGoal) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFECHA\tPESO\tIMC\tCLASIFICACIÓN\tGRASA %\tMÚSCULO %\tVISCERAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Date, dash(it.Weight), dash(it.IMC), it.Classification.Label,
			dash(it.FatPercentage), dash(it.MusclePercentage), dash(it.VisceralFat))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if goal != nil && goal.Value != nil {
		state := "fuera del objetivo"
		if goal.Met {
			state = "en objetivo"
		}
		fmt.Fprintf(w, "\nGrasa: %.1f%% (%s %.0f-%.0f%%)\n", *goal.Value, state, goal.Min, goal.Max)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newWeightAddCmd(c *cli) *cobra.Command {
	var f weightFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new entry (date defaults to today, height to " + app.DefaultHeight + " cm)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				ctrl := view.NewHistoryController(b.services().Weight, c.cfg.UserID)
				if err := ctrl.RequestAdd(c.today()); err != nil {
					return err
				}
				return saveWeight(cmd, ctrl, &f)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newWeightEditCmd(c *cli) *cobra.Command {
	var f weightFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an entry; IMC is recomputed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				e, err := b.weights.GetWeightEntry(cmd.Context(), c.cfg.UserID, args[0])
				if err != nil {
					return err
				}
				if e == nil {
					return fmt.Errorf("weight entry %s: %w", args[0], app.ErrNotFound)
				}
				ctrl := view.NewHistoryController(b.services().Weight, c.cfg.UserID)
				if err := ctrl.RequestEdit(*e); err != nil {
					return err
				}
				return saveWeight(cmd, ctrl, &f)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func saveWeight(cmd *cobra.Command, ctrl *view.HistoryController, f *weightFlags) error {
	if err := f.apply(cmd, ctrl); err != nil {
		return err
	}
	e, err := ctrl.Save(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s kg IMC %s\n", e.ID, e.Date, dash(e.Weight), dash(e.IMC))
	return nil
}

func newWeightDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(func(b *backend) error {
				return deleteWeight(cmd.Context(), view.NewHistoryController(b.services().Weight, c.cfg.UserID), args[0])
			})
		},
	}
}

func deleteWeight(ctx context.Context, ctrl *view.HistoryController, id string) error {
	if err := ctrl.RequestDelete(id); err != nil {
		return err
	}
	return ctrl.ConfirmDelete(ctx)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/store"
)

var leadsOut string

// leadsCmd represents the leads command
var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage captured e-mail leads",
}

var leadsAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Capture an e-mail address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(func(ctx context.Context, leads *store.Leads) error {
			added, err := leads.Save(ctx, args[0])
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Already saved: %s\n", args[0])
			}
			return nil
		})
	},
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured leads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(func(ctx context.Context, leads *store.Leads) error {
			all, err := leads.All(ctx)
			if err != nil {
				return err
			}
			for _, l := range all {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", l.CreatedAt.Format("2006-01-02 15:04"), l.Email)
			}
			fmt.Fprintf(os.Stderr, "%d leads\n", len(all))
			return nil
		})
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export captured leads as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var w io.Writer = cmd.OutOrStdout()
		if leadsOut != "" {
			var f *os.File
			f, err = os.Create(leadsOut)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer func() {
				if closeErr := f.Close(); closeErr != nil && err == nil {
					err = fmt.Errorf("close export file: %w", closeErr)
				}
			}()
			w = f
		}
		return withLeads(func(ctx context.Context, leads *store.Leads) error {
			return leads.Export(ctx, w)
		})
	},
}

func init() {
	rootCmd.AddCommand(leadsCmd)
	leadsCmd.AddCommand(leadsAddCmd, leadsListCmd, leadsExportCmd)
	leadsExportCmd.Flags().StringVarP(&leadsOut, "out", "o", "", "write to this file instead of stdout")
}

func withLeads(fn func(ctx context.Context, leads *store.Leads) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.close(context.Background())
	return fn(context.Background(), store.NewLeads(a.kv))
}

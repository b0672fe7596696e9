package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ffebudget/budget"
	"ffebudget/persistence"
	"ffebudget/services"
)

// loadDocument reads and migrates a .ffe file from disk.
func loadDocument(path string) (budget.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return budget.Document{}, err
	}
	doc, err := persistence.Deserialize(data)
	if err != nil {
		return budget.Document{}, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}

func newTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals <file>",
		Short: "Print the category totals, tax and variance of a budget file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			t := budget.ComputeTotals(doc.ProjectInfo, doc.Categories)

			out := cmd.OutOrStdout()
			for _, c := range doc.Categories {
				fmt.Fprintf(out, "%-30s %16s\n", c.Title, services.FormatCurrency(t.CategoryTotals[c.ID]))
			}
			fmt.Fprintf(out, "%-30s %16s\n", "Subtotal", services.FormatCurrency(t.GrandTotal))
			fmt.Fprintf(out, "%-30s %16s\n", "Sales Tax ("+services.FormatPercent(doc.ProjectInfo.SalesTaxRate)+")", services.FormatCurrency(t.Tax))
			fmt.Fprintf(out, "%-30s %16s\n", "Total with Tax", services.FormatCurrency(t.TotalWithTax))
			fmt.Fprintf(out, "%-30s %16s\n", "Variance", services.FormatCurrency(t.Variance))
			if t.OverBudget() {
				fmt.Fprintln(out, "over budget")
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <file> <out>",
		Short: "Export a budget file as an Excel ledger, PDF ledger or PDF spec book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			now := time.Now()
			var body []byte
			switch format {
			case "xlsx":
				body, err = services.GenerateLedgerExcel(services.BuildLedgerData(doc, budget.ComputeTotals(doc.ProjectInfo, doc.Categories), now))
			case "pdf":
				body, err = services.GenerateLedgerPDF(services.BuildLedgerData(doc, budget.ComputeTotals(doc.ProjectInfo, doc.Categories), now))
			case "specbook":
				body, err = services.GenerateSpecBookPDF(services.BuildSpecBookData(doc, now))
			default:
				return fmt.Errorf("unknown format %q: must be xlsx, pdf or specbook", format)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}

			if err := os.WriteFile(args[1], body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "output format: xlsx, pdf or specbook")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <in> <out>",
		Short: "Load a budget file of any version and save it at the current version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			data, err := persistence.Serialize(doc, time.Now())
			if err != nil {
				return err
			}

			out, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			files := &persistence.LocalFiles{Dir: filepath.Dir(out)}
			if err := files.Write(cmd.Context(), out, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s to version %s\n", args[0], persistence.Version)
			return nil
		},
	}
}

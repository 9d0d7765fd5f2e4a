package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/ledger"
)

func balancesCmd() *cobra.Command {
	var (
		file     string
		simplify bool
		asJSON   bool
		matrix   bool
	)

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Compute balances from a JSON snapshot of members, expenses and settlements",
		Long: `Reads {"members": [...], "expenses": [...], "settlements": [...]} from a file
("-" for stdin) and prints each member's balance and the suggested transfers.
Amounts are decimal numbers, e.g. 12.50.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := readSnapshot(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			report := snapshot.Compute()
			var plan []ledger.Suggestion
			if simplify {
				plan = ledger.Simplify(report.Balances)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					ledger.Report
					Simplified []ledger.Suggestion `json:"simplified,omitempty"`
				}{report, plan})
			}
			if err := printReport(out, report, plan, simplify); err != nil {
				return err
			}
			if matrix {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Debt matrix:")
				return printMatrix(out, snapshot)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "snapshot file, - for stdin")
	cmd.Flags().BoolVar(&simplify, "simplify", false, "also print a simplified transfer plan")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().BoolVar(&matrix, "matrix", false, "also print every pairwise debt, settled ones included")
	cmd.MarkFlagRequired("file")
	return cmd
}

func readSnapshot(stdin io.Reader, file string) (ledger.Snapshot, error) {
	var snapshot ledger.Snapshot

	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return snapshot, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snapshot, nil
}

func printReport(out io.Writer, report ledger.Report, plan []ledger.Suggestion, simplify bool) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, "MEMBER\tOWES\tOWED\tNET\t")
	for _, b := range report.Balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", b.Name, b.TotalOwes(), b.TotalOwed(), b.Net)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	if report.Settled() {
		fmt.Fprintln(out, "All settled up.")
	} else {
		fmt.Fprintln(out, "Suggested transfers:")
		if err := printTransfers(out, report.Suggestions); err != nil {
			return err
		}
	}

	if simplify && len(plan) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Simplified plan:")
		return printTransfers(out, plan)
	}
	return nil
}

func printTransfers(out io.Writer, suggestions []ledger.Suggestion) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, s := range suggestions {
		fmt.Fprintf(tw, "  %s\t→\t%s\t%s\n", s.FromName, s.ToName, s.Amount)
	}
	return tw.Flush()
}

// printMatrix lists the raw debtor -> creditor entries after settlements.
func printMatrix(out io.Writer, snapshot ledger.Snapshot) error {
	names := make(map[string]string, len(snapshot.Members))
	for _, m := range snapshot.Members {
		names[m.ID] = m.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}

	m := ledger.BuildDebtMatrix(snapshot.Members, snapshot.Expenses, snapshot.Settlements)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, debtor := range m.Debtors() {
		for _, creditor := range m.Creditors(debtor) {
			fmt.Fprintf(tw, "  %s\t→\t%s\t%s\n", name(debtor), name(creditor), m.Owed(debtor, creditor))
		}
	}
	return tw.Flush()
}

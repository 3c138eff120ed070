package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"baletrack/frontend/scan"
	"baletrack/frontend/shared/html"
)

func newLookupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <barcode|lot|id>",
		Short: "Find a bale the way the scan screen does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireSession(); err != nil {
				return err
			}

			res := scan.Lookup(cmd.Context(), a.data.Bales, args[0])
			return printLookup(cmd.OutOrStdout(), args[0], res)
		},
	}
}

func printLookup(out io.Writer, code string, res scan.Result) error {
	if res.Bale == nil {
		if res.Incomplete {
			return fmt.Errorf("no bale found for %q, but the remote service could not be fully read", code)
		}
		return fmt.Errorf("no bale found for %q", code)
	}
	b := res.Bale
	fault := "no"
	if b.HasFault {
		fault = "yes: " + html.OrDash(b.FaultDescription)
	}
	fmt.Fprintf(out, "Bale %s (matched by %s)\n", b.ID, res.Kind)
	fmt.Fprintf(out, "  Barcode:  %s\n", html.OrDash(b.BarCode))
	fmt.Fprintf(out, "  Lot:      %s\n", html.OrDash(b.LotNumber))
	fmt.Fprintf(out, "  Farmer:   %s\n", b.FarmerName())
	fmt.Fprintf(out, "  Box:      %s\n", html.OrDash(b.BoxNumber()))
	fmt.Fprintf(out, "  Mass:     %s kg\n", html.FormatFloat(b.Mass))
	fmt.Fprintf(out, "  Class:    %s\n", b.Classification.Label())
	fmt.Fprintf(out, "  Fault:    %s\n", fault)
	return nil
}

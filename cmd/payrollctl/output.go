package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatIDR renders a whole-rupiah amount, e.g. Rp8.975.000,00.
func formatIDR(d decimal.Decimal) string {
	return money.New(d.Shift(2).IntPart(), money.IDR).Display()
}

type row struct {
	label  string
	amount decimal.Decimal
}

func writeRows(w io.Writer, rows []row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t\n", r.label, formatIDR(r.amount)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Package display renders command output for terminals and for pipes.
package display

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ftm/errors"
)

// ShouldOutputJSON reports whether the command's --json flag, local or
// persistent, is set.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if flag := cmd.Flags().Lookup("json"); flag != nil && flag.Changed {
		on, _ := cmd.Flags().GetBool("json")
		return on
	}
	if flag := cmd.Root().PersistentFlags().Lookup("json"); flag != nil {
		on, _ := cmd.Root().PersistentFlags().GetBool("json")
		return on
	}
	return false
}

// OutputJSON marshals v with MarshalJSON and writes it to w
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Table renders rows as a table with the first row as header
func Table(w io.Writer, rows [][]string) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// KeyValues renders label/value pairs, one per line
func KeyValues(w io.Writer, pairs [][2]string) error {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0])+1)
	}
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n", width, p[0]+":", p[1]); err != nil {
			return err
		}
	}
	return nil
}

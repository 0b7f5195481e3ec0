package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/ftm/display"
	"github.com/teranos/ftm/model"
)

func newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model [schema]",
		Short: "Inspect the schema model",
		Long: `Inspect the schema model.

Without arguments, list every schema. With a schema name, show its
hierarchy and the properties it has after inheritance.

Examples:
  ftm model                       # List schemata
  ftm model Person                # Show the Person schema
  ftm model --json Ownership      # Show a schema as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: runModel,
	}
}

// schemaSummary is the JSON shape of one schema
type schemaSummary struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	Plural     string            `json:"plural"`
	Extends    []string          `json:"extends"`
	Ancestors  []string          `json:"ancestors,omitempty"`
	Edge       *edgeSummary      `json:"edge,omitempty"`
	Temporal   *temporalSummary  `json:"temporal_extent,omitempty"`
	Properties []propertySummary `json:"properties,omitempty"`
}

type edgeSummary struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Label    string `json:"label"`
	Directed bool   `json:"directed"`
}

type temporalSummary struct {
	Start []string `json:"start"`
	End   []string `json:"end"`
}

type propertySummary struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Range   string `json:"range,omitempty"`
	Reverse string `json:"reverse,omitempty"`
	Schema  string `json:"schema"`
	Stub    bool   `json:"stub,omitempty"`
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := loadModel(cmd, cfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listSchemata(cmd, m)
	}
	schema, err := m.GetSchema(args[0])
	if err != nil {
		return err
	}
	return showSchema(cmd, schema)
}

func listSchemata(cmd *cobra.Command, m *model.Model) error {
	schemata := m.Schemata()
	if display.ShouldOutputJSON(cmd) {
		out := make([]schemaSummary, len(schemata))
		for i, s := range schemata {
			out[i] = summarize(s, false)
		}
		return display.OutputJSON(cmd.OutOrStdout(), out)
	}

	rows := [][]string{{"Schema", "Label", "Extends", "Properties", "Edge"}}
	for _, s := range schemata {
		edge := ""
		if e, ok := s.Edge(); ok {
			edge = e.Label()
		}
		rows = append(rows, []string{
			s.Name(),
			s.Label(),
			strings.Join(s.ExtendsNames(), ", "),
			strconv.Itoa(len(s.Properties())),
			edge,
		})
	}
	return display.Table(cmd.OutOrStdout(), rows)
}

func showSchema(cmd *cobra.Command, s *model.Schema) error {
	summary := summarize(s, true)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), summary)
	}

	w := cmd.OutOrStdout()
	pairs := [][2]string{
		{"Schema", summary.Name},
		{"Label", summary.Label},
		{"Plural", summary.Plural},
		{"Extends", strings.Join(summary.Extends, ", ")},
		{"Ancestors", strings.Join(summary.Ancestors, ", ")},
	}
	if e := summary.Edge; e != nil {
		pairs = append(pairs, [2]string{"Edge", e.Source + " -> " + e.Target + " (" + e.Label + ")"})
	}
	if te := summary.Temporal; te != nil {
		pairs = append(pairs, [2]string{"Temporal", strings.Join(te.Start, ", ") + " / " + strings.Join(te.End, ", ")})
	}
	if err := display.KeyValues(w, pairs); err != nil {
		return err
	}

	rows := [][]string{{"Property", "Type", "Range", "Reverse", "Defined by"}}
	for _, p := range summary.Properties {
		rows = append(rows, []string{p.Name, p.Type, p.Range, p.Reverse, p.Schema})
	}
	return display.Table(w, rows)
}

func summarize(s *model.Schema, detail bool) schemaSummary {
	out := schemaSummary{
		Name:    s.Name(),
		Label:   s.Label(),
		Plural:  s.Plural(),
		Extends: s.ExtendsNames(),
	}
	if out.Extends == nil {
		out.Extends = []string{}
	}
	if e, ok := s.Edge(); ok {
		out.Edge = &edgeSummary{
			Source:   e.SourceProperty().Name(),
			Target:   e.TargetProperty().Name(),
			Label:    e.Label(),
			Directed: e.Directed(),
		}
	}
	if !detail {
		return out
	}

	for _, a := range s.Ancestors()[1:] {
		out.Ancestors = append(out.Ancestors, a.Name())
	}
	if te, ok := s.TemporalExtent(); ok {
		out.Temporal = &temporalSummary{Start: names(te.StartProperties()), End: names(te.EndProperties())}
	}
	for _, p := range s.Properties() {
		out.Properties = append(out.Properties, propertySummary{
			Name:    p.Name(),
			Label:   p.Label(),
			Type:    p.Type().Name(),
			Range:   p.RangeName(),
			Reverse: p.ReverseName(),
			Schema:  p.Schema().Name(),
			Stub:    p.Stub(),
		})
	}
	return out
}

func names(props []*model.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name()
	}
	return out
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/ftm/display"
	"github.com/teranos/ftm/entity"
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/store"
)

func newAdjacentCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "adjacent <entity-id>",
		Short: "List the entities adjacent to one entity",
		Long: `List the entities adjacent to one entity.

Entities are loaded from JSON lines into an in-memory view. The entity's own
references are listed first, then every entity referencing it.

Examples:
  ftm adjacent -i entities.jsonl harry
  ftm adjacent -i entities.jsonl --json harry`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdjacent(cmd, input, args[0])
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", stdio, "Entity file to read (- for stdin)")
	return cmd
}

type adjacencyRow struct {
	Direction string `json:"direction"`
	Property  string `json:"property"`
	ID        string `json:"id"`
	Schema    string `json:"schema"`
	Caption   string `json:"caption"`
}

func runAdjacent(cmd *cobra.Command, input, id string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := loadModel(cmd, cfg)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, input)
	if err != nil {
		return err
	}
	defer in.Close()

	var opts []store.Option
	reg := metricsRegistry(cfg)
	if reg != nil {
		opts = append(opts, store.WithRegisterer(reg))
	}
	view, err := store.LoadValueEntities(m, in, opts...)
	if err != nil {
		return err
	}
	defer view.Close()

	e, ok, err := view.GetEntity(id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewNotFoundError("entity %s is not in the input", id)
	}

	var rows []adjacencyRow
	add := func(direction string, adj store.Adjacency[*entity.ValueEntity]) {
		rows = append(rows, adjacencyRow{
			Direction: direction,
			Property:  adj.Property.QName(),
			ID:        adj.Entity.ID(),
			Schema:    adj.Entity.Schema().Name(),
			Caption:   adj.Entity.Caption(),
		})
	}
	for adj := range store.Outbound[*entity.ValueEntity](view, e) {
		add("outbound", adj)
	}
	inbound, err := view.Inverted(e.ID())
	if err != nil {
		return err
	}
	for adj := range inbound {
		add("inbound", adj)
	}

	if display.ShouldOutputJSON(cmd) {
		if rows == nil {
			rows = []adjacencyRow{}
		}
		if err := display.OutputJSON(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
	} else {
		table := [][]string{{"Direction", "Property", "Entity", "Schema", "Caption"}}
		for _, r := range rows {
			table = append(table, []string{r.Direction, r.Property, r.ID, r.Schema, r.Caption})
		}
		if err := display.Table(cmd.OutOrStdout(), table); err != nil {
			return err
		}
	}
	return dumpMetrics(cmd.ErrOrStderr(), reg)
}

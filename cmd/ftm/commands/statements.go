package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/ftm/entity"
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/model"
	"github.com/teranos/ftm/statement"
)

type statementsOptions struct {
	input    string
	output   string
	format   string
	dataset  string
	external bool
}

func newStatementsCmd() *cobra.Command {
	var opts statementsOptions
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Explode entities into statements",
		Long: `Explode entities into statements.

Every entity read from JSON lines becomes one id statement plus one
statement per property value, attributed to --dataset. Statements seen now
get the current time as first and last seen.

Examples:
  ftm statements -i entities.jsonl --dataset sanctions -f csv > statements.csv
  ftm statements -i entities.jsonl --dataset sanctions | ftm aggregate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatements(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", stdio, "Entity file to read (- for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", stdio, "Statement file to write (- for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Statement format: json, csv or pack (default statements.format)")
	cmd.Flags().StringVarP(&opts.dataset, "dataset", "d", "", "Dataset the statements belong to")
	cmd.Flags().BoolVar(&opts.external, "external", false, "Mark statements as external")
	cmd.MarkFlagRequired("dataset")
	return cmd
}

func runStatements(cmd *cobra.Command, opts statementsOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := loadModel(cmd, cfg)
	if err != nil {
		return err
	}
	if opts.format == "" {
		opts.format = cfg.Statements.Format
	}
	format, err := statement.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	writer, err := statement.NewWriter(out, format)
	if err != nil {
		return err
	}
	now := model.Now()
	for e, err := range entity.ReadValueEntities(m, in) {
		if err != nil {
			return err
		}
		stmts, err := entity.ToStatements(e, opts.dataset, now, now, opts.external)
		if err != nil {
			return errors.Wrapf(err, "failed to explode entity %s", e.ID())
		}
		for _, s := range stmts {
			if err := writer.Write(s); err != nil {
				return err
			}
		}
	}
	return writer.Flush()
}

package commands

import (
	"bufio"
	"slices"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ftm/am"
	"github.com/teranos/ftm/dataset"
	"github.com/teranos/ftm/display"
	"github.com/teranos/ftm/entity"
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/logger"
	"github.com/teranos/ftm/statement"
)

type aggregateOptions struct {
	input    string
	output   string
	format   string
	scope    string
	catalog  string
	external bool
	quiet    bool
	tag      string
}

func newAggregateCmd() *cobra.Command {
	var opts aggregateOptions
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate statements into entities",
		Long: `Aggregate statements into entities.

Statements are grouped by canonical id in the order the ids first appear.
Each group becomes one entity whose schema is the most specific schema all
its statements agree on. The entity checksum is computed and the result is
written as JSON lines. Each run is stamped with a dataset version
(yyyyMMddHHmmss-tag) in the log and the summary line.

With --dataset, only statements from the leaf datasets of that dataset are
used; collections are resolved against --catalog (or catalog.path).

Examples:
  ftm aggregate -i statements.csv -f csv > entities.jsonl
  ftm aggregate -i statements.pack -f pack --dataset all --catalog catalog.yml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", stdio, "Statement file to read (- for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", stdio, "Entity file to write (- for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Statement format: json, csv or pack (default statements.format)")
	cmd.Flags().StringVar(&opts.scope, "dataset", "", "Only aggregate statements of this dataset's leaves")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "Dataset catalog file (default catalog.path)")
	cmd.Flags().BoolVar(&opts.external, "external", false, "Mark computed checksums as external")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print a summary")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Three-letter tag for the run version (random when empty)")
	return cmd
}

func runAggregate(cmd *cobra.Command, opts aggregateOptions) error {
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
	scope, err := scopeDatasets(cfg, opts)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	reader, err := statement.NewReader(in, format, m)
	if err != nil {
		return err
	}
	stmts, err := reader.All()
	if err != nil {
		return err
	}
	read := len(stmts)
	if scope != nil {
		stmts = slices.DeleteFunc(stmts, func(s *statement.Statement) bool {
			return !slices.Contains(scope, s.Dataset())
		})
	}

	entities, err := entity.Aggregate(stmts)
	if err != nil {
		return err
	}

	out, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	for _, e := range entities {
		if _, err := e.ComputeChecksum(opts.external); err != nil {
			return err
		}
		line, err := display.MarshalLine(e)
		if err != nil {
			return errors.Wrapf(err, "failed to encode entity %s", e.ID())
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to write entities")
	}

	runVersion := dataset.NewVersion(opts.tag)
	logger.Infow("Aggregated statements",
		logger.FieldOperation, "aggregate",
		logger.FieldVersion, runVersion,
		logger.FieldCount, len(entities),
		"statements", read,
		"used", len(stmts),
		logger.FieldFormat, string(format))
	if !opts.quiet && opts.output != stdio && opts.output != "" {
		pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Aggregated %d statements into %d entities (version %s)",
			len(stmts), len(entities), runVersion)
	}
	return nil
}

// scopeDatasets resolves --dataset to the names of its leaf datasets. Without
// a catalog the dataset is taken to be a leaf. nil means no filtering.
func scopeDatasets(cfg *am.Config, opts aggregateOptions) ([]string, error) {
	if opts.scope == "" {
		return nil, nil
	}
	path := opts.catalog
	if path == "" {
		path = cfg.Catalog.Path
	}
	if path == "" {
		return []string{opts.scope}, nil
	}
	catalog, err := dataset.LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := catalog.Get(opts.scope)
	if err != nil {
		return nil, err
	}
	return ds.LeafNames(), nil
}

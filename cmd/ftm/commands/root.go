// Package commands implements the ftm command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/ftm/am"
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/logger"
)

// NewRootCmd builds the ftm command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ftm",
		Short: "ftm - entity graph toolkit",
		Long: `ftm - entity graph toolkit.

Work with entities described by a schema model: aggregate statements into
entities, explode entities back into statements and walk the entity graph.

Available commands:
  model      - Inspect the schema model
  aggregate  - Aggregate statements into entities
  statements - Explode entities into statements
  adjacent   - List the entities adjacent to one entity
  am         - Manage ftm configuration ("I am")
  version    - Show version information`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	root.PersistentFlags().Bool("json", false, "Output JSON instead of tables")
	root.PersistentFlags().String("model", "", "Model file (default model.path, else the built-in model)")

	root.AddCommand(
		newModelCmd(),
		newAggregateCmd(),
		newStatementsCmd(),
		newAdjacentCmd(),
		newAmCmd(),
		newVersionCmd(),
	)
	return root
}

// initLogger installs the global logger: -v flags win over log.level. Logs
// go to stderr so they never mix with command output.
func initLogger(cmd *cobra.Command) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		level, _ = logger.ParseLevel(am.DefaultLogLevel)
	}
	if verbosity, _ := cmd.Flags().GetCount("verbose"); verbosity > 0 {
		level = logger.VerbosityToLevel(verbosity)
	}
	if err := logger.Initialize(cfg.Log.JSON, level); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

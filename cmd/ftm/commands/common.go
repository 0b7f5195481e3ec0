package commands

import (
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/teranos/ftm/am"
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/logger"
	"github.com/teranos/ftm/model"
)

// stdio is the conventional name for standard input and output
const stdio = "-"

// loadConfig loads and validates the configuration
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// loadModel loads the model named by --model, then model.path, falling back
// to the embedded default model
func loadModel(cmd *cobra.Command, cfg *am.Config) (*model.Model, error) {
	path, _ := cmd.Flags().GetString("model")
	if path == "" {
		path = cfg.Model.Path
	}
	if path == "" {
		return model.Default()
	}
	logger.Debugw("Loading model", logger.FieldFile, path)
	return model.LoadFile(path)
}

// openInput opens path for reading; "-" or empty reads the command's input
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == stdio {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return f, nil
}

// openOutput opens path for writing; "-" or empty writes to the command's output
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == stdio {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", path)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// metricsRegistry returns a fresh registry when view metrics are enabled
func metricsRegistry(cfg *am.Config) *prometheus.Registry {
	if !cfg.View.Metrics {
		return nil
	}
	return prometheus.NewRegistry()
}

// dumpMetrics writes every gathered metric in the Prometheus text format
func dumpMetrics(w io.Writer, reg *prometheus.Registry) error {
	if reg == nil {
		return nil
	}
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}

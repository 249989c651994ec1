package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wildstyl3r/polmie/internal/config"
	"github.com/wildstyl3r/polmie/internal/model"
	"github.com/wildstyl3r/polmie/internal/utils"
)

type runOptions struct {
	input   string
	output  string
	presets []string
	units   []string
	threads int
	verbose bool
}

type job struct {
	name       string
	parameters config.ModelParameters
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "polmie",
		Short: "Polarization of light scattered by a population of spheres.",
		Long: `polmie averages single-sphere Mie scattering over a Gamma size distribution
and reports the degree of linear polarization against the scattering angle.

Models are read from a TOML file (--input) or taken from built-in presets (--preset).`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCommand(), newPresetsCommand())
	return root
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	var df model.DataFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute polarization curves.",
		Long: `run computes every model of the configuration file, or every preset named with
--preset, and writes the requested outputs as CSV text files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runModels(ctx, opts, df)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "model configuration in toml format")
	flags.StringVarP(&opts.output, "output", "o", "", "output directory, overrides OutputDir of the configuration")
	flags.StringSliceVar(&opts.presets, "preset", nil, "run the named presets instead of a configuration file")
	flags.StringSliceVar(&opts.units, "units", nil, "output units for preset runs, e.g. nm")
	flags.IntVarP(&opts.threads, "threads", "t", 0, "number of workers, defaults to the number of CPUs")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log the discretization and timing of every model")
	df = model.NewDataFlags(flags)
	cmd.MarkFlagsMutuallyExclusive("input", "preset")
	cmd.MarkFlagsOneRequired("input", "preset")
	return cmd
}

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in parameter sets (SI units).",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.PresetNames() {
				preset := config.Presets[name]
				fields := make([]string, 0, len(preset))
				for _, field := range []string{"Wavelength", "RefractiveIndex", "MeanRadius", "Sigma", "EffectiveRadius", "EffectiveVariance"} {
					if value, ok := preset[field]; ok {
						fields = append(fields, fmt.Sprintf("%s=%v", field, value))
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, strings.Join(fields, " "))
			}
		},
	}
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.TimeOnly,
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func collectJobs(opts *runOptions) (jobs []job, outputDir, summaryName string, err error) {
	if opts.input == "" {
		for _, name := range opts.presets {
			parameters, err := config.PresetModel(name, opts.units)
			if err != nil {
				return nil, "", "", err
			}
			jobs = append(jobs, job{name: name, parameters: parameters})
		}
		return jobs, opts.output, "presets", nil
	}

	var cfg config.Config
	var meta toml.MetaData
	cfg, meta, err = config.LoadConfig(opts.input)
	if err != nil {
		return nil, "", "", err
	}
	for _, name := range cfg.ModelNames() {
		parameters := cfg.Models[name]
		if err := parameters.CheckAndUnify(name, &cfg, &meta); err != nil {
			return nil, "", "", err
		}
		jobs = append(jobs, job{name: name, parameters: parameters})
	}
	outputDir = cfg.OutputDir
	if opts.output != "" {
		outputDir = opts.output
	}
	return jobs, outputDir, utils.GetFilename(opts.input), nil
}

func runModels(ctx context.Context, opts *runOptions, df model.DataFlags) error {
	log := newLogger(opts.verbose)
	startTime := time.Now()

	jobs, outputDir, summaryName, err := collectJobs(opts)
	if err != nil {
		return err
	}
	df.SetOutputPath(outputDir)

	var summary utils.CSV
	for _, j := range jobs {
		j.parameters.SetThreads(opts.threads)
		j.parameters.SetVerbosity(opts.verbose)
		modelLog := log.WithField("model", j.name)

		m, err := model.NewModel(j.parameters, modelLog)
		if err != nil {
			return fmt.Errorf("model %s: %w", j.name, err)
		}
		result, err := m.Run(ctx)
		switch {
		case errors.Is(err, model.ErrZeroIntensity):
			modelLog.WithError(err).Warn("polarization undefined at some angles")
		case err != nil:
			return fmt.Errorf("model %s: %w", j.name, err)
		}

		de := model.NewDataExtractor(m, result)
		if err := de.Save(j.name, df); err != nil {
			return fmt.Errorf("model %s: %w", j.name, err)
		}
		summary = append(summary, de.SummaryRow(j.name))
		modelLog.WithFields(logrus.Fields{
			"elapsed": result.Elapsed,
			"Qsca":    result.Efficiencies.Scattering,
			"skipped": len(result.Failures),
		}).Info("model computed")
	}

	if df.SummaryRequested() {
		name, err := utils.WriteAsCSV(summary, outputDir, "summary", summaryName, model.SummaryColumns())
		if err != nil {
			return err
		}
		log.WithField("file", name).Info("summary saved")
	}
	log.WithField("elapsed", time.Since(startTime)).Info("done")
	return nil
}

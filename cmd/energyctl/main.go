package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hybrid-energy-platform/internal/config"
	"hybrid-energy-platform/internal/models"
	"hybrid-energy-platform/internal/repository"
	"hybrid-energy-platform/internal/services"
	"hybrid-energy-platform/pkg/database"
	"hybrid-energy-platform/pkg/logging"
	"hybrid-energy-platform/pkg/metrics"
)

const version = "1.0.0"

// globals shared by every subcommand
type globals struct {
	defaultsFile string
	logLevel     string
	asJSON       bool
}

func main() {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "energyctl",
		Short:         "Size and price hybrid PV/battery/diesel systems from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.defaultsFile, "defaults", os.Getenv("ANALYSIS_DEFAULTS_FILE"), "YAML file overriding the built-in parameter defaults")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level written to stderr")
	rootCmd.PersistentFlags().BoolVar(&g.asJSON, "json", false, "Print the raw JSON result instead of a report")

	rootCmd.AddCommand(analyzeCmd(g))
	rootCmd.AddCommand(sensitivityCmd(g))
	rootCmd.AddCommand(monteCarloCmd(g))
	rootCmd.AddCommand(importCmd(g))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func analyzeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [request.yaml]",
		Short: "Run the full analysis for a request file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, req, err := g.prepare(args[0])
			if err != nil {
				return err
			}
			report, err := svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), report, func(w io.Writer) { printReport(w, report) })
		},
	}
}

func sensitivityCmd(g *globals) *cobra.Command {
	var (
		parameter string
		values    string
	)

	cmd := &cobra.Command{
		Use:   "sensitivity [request.yaml]",
		Short: "Sweep one parameter and report how NPV and IRR move",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sweep, err := parseValues(values)
			if err != nil {
				return err
			}
			svc, req, err := g.prepare(args[0])
			if err != nil {
				return err
			}
			req.Uncertainty = &models.UncertaintyRequest{
				Sensitivity: map[models.Parameter][]float64{models.Parameter(parameter): sweep},
			}

			result, err := svc.Uncertainty(cmd.Context(), req)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), result, func(w io.Writer) { printSensitivity(w, result) })
		},
	}

	cmd.Flags().StringVarP(&parameter, "param", "p", string(models.ParamDieselFuelCost), "Parameter to sweep")
	cmd.Flags().StringVarP(&values, "values", "v", "", "Comma-separated values to evaluate")
	cmd.MarkFlagRequired("values")
	return cmd
}

func monteCarloCmd(g *globals) *cobra.Command {
	var (
		samples int
		seed    uint64
		spread  float64
	)

	cmd := &cobra.Command{
		Use:   "montecarlo [request.yaml]",
		Short: "Sample uncertain prices and report the NPV and IRR distribution",
		Long: "Samples diesel fuel, panel and battery prices uniformly within ±spread of the request values " +
			"unless the request file already carries uncertainty ranges.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, req, err := g.prepare(args[0])
			if err != nil {
				return err
			}
			if req.Uncertainty == nil || len(req.Uncertainty.Ranges) == 0 {
				req.Uncertainty = &models.UncertaintyRequest{Ranges: spreadRanges(req, spread)}
			}
			req.Uncertainty.Samples = samples
			req.Uncertainty.Seed = seed

			result, err := svc.Uncertainty(cmd.Context(), req)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), result, func(w io.Writer) { printMonteCarlo(w, result) })
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", 1000, "Number of samples, clamped to 100..10000")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the sampler; equal seeds give equal draws")
	cmd.Flags().Float64Var(&spread, "spread", 0.25, "Relative price spread used when the request has no ranges")
	return cmd
}

func importCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import [survey-dir]",
		Short: "Load every facility survey YAML file in a directory into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runImport(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (g *globals) logger() (*logging.StructuredLogger, error) {
	level, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewStructuredLogger("energyctl", version, level)
	logger.SetOutput(os.Stderr)
	return logger, nil
}

// prepare builds a database-less analysis service and decodes the request file onto the defaults
func (g *globals) prepare(path string) (*services.AnalysisService, *models.AnalysisRequest, error) {
	logger, err := g.logger()
	if err != nil {
		return nil, nil, err
	}

	defaults, err := config.LoadDefaults(g.defaultsFile, 0)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read request: %w", err)
	}
	req := defaults.NewRequest()
	if err := yaml.Unmarshal(data, req); err != nil {
		return nil, nil, fmt.Errorf("failed to parse request %s: %w", path, err)
	}

	collector := metrics.NewCollector("energyctl", prometheus.NewRegistry())
	svc := services.NewAnalysisService(defaults.NewRequest, config.DefaultUncertaintyTimeout, nil, logger, collector)
	return svc, req, nil
}

func (g *globals) runImport(ctx context.Context, out io.Writer, dir string) error {
	logger, err := g.logger()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("DB_HOST is not set, import needs a database")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	collector := metrics.NewCollector("energyctl", prometheus.NewRegistry())
	db, err := database.NewPostgresDB(ctx, cfg.Database.Connection(), logger, collector)
	if err != nil {
		return err
	}
	defer db.Close()

	facilities := services.NewFacilityService(repository.NewFacilityRepository(db, logger), logger)
	result, err := facilities.ImportDirectory(ctx, dir)
	if err != nil {
		return err
	}
	printImport(out, result)
	return nil
}

func (g *globals) print(w io.Writer, v interface{}, report func(io.Writer)) error {
	if g.asJSON {
		return writeJSON(w, v)
	}
	report(w)
	return nil
}

func parseValues(s string) ([]float64, error) {
	var values []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", field, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("--values needs at least one number")
	}
	return values, nil
}

func spreadRanges(req *models.AnalysisRequest, spread float64) map[models.Parameter]models.Range {
	around := func(v float64) models.Range {
		return models.Range{Min: (1 - spread) * v, Max: (1 + spread) * v}
	}
	return map[models.Parameter]models.Range{
		models.ParamDieselFuelCost: around(req.Financial.DieselFuelCostPerLiter),
		models.ParamPanelCost:      around(req.Costing.PanelCostPerW),
		models.ParamBatteryCost:    around(req.Costing.BatteryCost(req.System.BatteryChemistry)),
	}
}

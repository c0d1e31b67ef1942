package commands

// Render command
// Loads config, reads the input document, renders the charts and prints the JSON result
// Input problems never fail the command: they produce an empty image list

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strategy-charts/internal/features/charts"
	"strategy-charts/internal/features/graphmodel"
	"strategy-charts/internal/infra/config"
	"strategy-charts/internal/infra/fs"
	logging "strategy-charts/internal/infra/log"
	"strategy-charts/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render charts and print them as JSON",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res := generateCharts(ctx, cmd, cfg)
	return writeResult(cmd, res)
}

// loadConfig resolves the configuration and starts logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.Init(cfg.Log.Level, cfg.Log.Output); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}

func chartOptions(cfg *config.Config) charts.Options {
	return charts.Options{
		DPI:        cfg.Render.DPI,
		WidthIn:    cfg.Render.WidthIn,
		HeightIn:   cfg.Render.HeightIn,
		FontPath:   cfg.Render.FontPath,
		Seed:       cfg.Graph.Seed,
		Iterations: cfg.Graph.Iterations,
	}
}

// generateCharts runs the whole pipeline short of printing.
func generateCharts(ctx context.Context, cmd *cobra.Command, cfg *config.Config) charts.Result {
	start := time.Now()
	in := readInput(cmd)

	var modeler charts.GraphModeler
	if cfg.Graph.ModelEnabled {
		m, err := graphmodel.Start(ctx)
		if err != nil {
			logging.LogWarn("Graph model unavailable", zap.Error(err))
		} else {
			defer m.Close()
			modeler = m
		}
	}

	res := charts.NewGenerator(chartOptions(cfg), modeler).Generate(ctx, in)

	if cfg.Output.Dir != "" {
		saveCharts(cfg.Output.Dir, res.Charts)
	}

	logging.LogDebug("Pipeline finished",
		zap.Int("images", len(res.Charts)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return res
}

func readInput(cmd *cobra.Command) report.Input {
	var r io.Reader = cmd.InOrStdin()

	path, _ := cmd.Flags().GetString("input")
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			logging.LogWarn("Failed to open input file, using empty input", zap.String("path", path), zap.Error(err))
			return report.Input{}
		}
		defer f.Close()
		r = f
	}

	in, err := report.ReadInput(r)
	if err != nil {
		logging.LogWarn("Failed to read input, using empty input", zap.Error(err))
		return report.Input{}
	}
	return in
}

func saveCharts(dir string, list []charts.Chart) {
	for _, c := range list {
		path, err := fs.SavePNG(dir, c.Name, c.PNG)
		if err != nil {
			logging.LogWarn("Failed to save chart", zap.String("chart", c.Name), zap.Error(err))
			continue
		}
		logging.LogInfo("Chart saved", zap.String("path", path))
	}
}

func writeResult(cmd *cobra.Command, res charts.Result) error {
	if err := report.WriteOutput(cmd.OutOrStdout(), res.Output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

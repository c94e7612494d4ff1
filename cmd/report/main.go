package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/quantex-lab/minbar/internal/datasource"
	"github.com/quantex-lab/minbar/internal/loader"
	"github.com/quantex-lab/minbar/internal/logger"
	"github.com/quantex-lab/minbar/internal/pipeline"
)

// reportAction loads the raw minute bars through DuckDB, runs the analysis
// pipeline, and writes the YAML report.
func reportAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	granularity := cmd.String("granularity")
	outputPath := cmd.String("output")

	config := pipeline.DefaultConfig()

	if configPath != "" {
		loaded, err := pipeline.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		config = loaded
	}

	// flags override the config file
	if dataPath != "" {
		config.DataPath = dataPath
	}

	if granularity != "" {
		config.Granularity = granularity
	}

	if config.DataPath == "" {
		return fmt.Errorf("no data path: pass --data or set data_path in the config")
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	source, err := datasource.NewDataSource(":memory:", appLogger)
	if err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}
	defer source.Close()

	if err := source.Initialize(config.DataPath); err != nil {
		return fmt.Errorf("failed to bind %s: %w", config.DataPath, err)
	}

	total, err := source.Count(config.StartTime, config.EndTime)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("Loading %s", config.DataPath)),
		progressbar.OptionShowCount())

	rows := make([]loader.RawRow, 0, total)

	var readErr error

	source.ReadAll(config.StartTime, config.EndTime)(func(row loader.RawRow, err error) bool {
		if err != nil {
			readErr = err
			return false
		}

		rows = append(rows, row)
		bar.Add(1)

		return true
	})

	if readErr != nil {
		return fmt.Errorf("failed to read rows: %w", readErr)
	}

	fmt.Fprintln(os.Stderr)

	report, err := pipeline.NewPipeline(config, appLogger).Run(rows)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	encoded, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if outputPath == "" {
		fmt.Print(string(encoded))
		return nil
	}

	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	log.Printf("Report written to %s", outputPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "report",
		Usage: "Run the minute-bar analysis and forecast report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the input CSV file (overrides the config)",
			},
			&cli.StringFlag{
				Name:    "granularity",
				Aliases: []string{"g"},
				Usage:   "Resampling granularity: none, weekly or monthly (overrides the config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the YAML report to this file instead of stdout",
			},
		},
		Action: reportAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"awsim-client/internal/bridge"
	"awsim-client/internal/config"
	"awsim-client/internal/orchestrator"
	"awsim-client/internal/reporter"
	"awsim-client/internal/sequencer"
	"awsim-client/internal/utils"
)

var (
	configPath       string
	logLevel         string
	waitWritingTrace bool
)

var rootCmd = &cobra.Command{
	Use:   "awsim-client <file-or-dir>",
	Short: "Drive the simulator and driving stack through scripted scenarios",
	Long: `Submits scenario scripts to the simulator bridge one at a time:
submit, re-localize, set goal, engage autonomous mode, wait for arrival,
then reset the environment before the next scenario.

The positional argument is a single scenario script or a directory of
scripts (executed in ascending file name order).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return run(args[0])
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file (defaults apply when unset)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().BoolVarP(&waitWritingTrace, "wait-writing-trace", "w", true,
		"Wait for the runtime monitor to finish writing the trace before the next scenario")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(target string) error {
	logger := utils.NewLogger(utils.ParseLogLevel(logLevel))
	logger.Info("Starting scenario client", nil)

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			logger.Error("Failed to load configuration", map[string]interface{}{
				"error": err.Error(),
				"path":  configPath,
			})
			return err
		}
		cfg = loaded
	}

	info, err := os.Stat(target)
	if err != nil {
		fmt.Println("[ERROR] File or directory not found.")
		return fmt.Errorf("file or directory not found: %s", target)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		cancel()
	}()

	metrics := utils.NewMetrics()
	transport := bridge.NewClient(cfg, metrics)
	driver := orchestrator.New(transport, cfg, logger)
	seq := sequencer.New(driver, cfg, logger, metrics, waitWritingTrace)

	if info.IsDir() {
		result, err := seq.RunAll(ctx, target)
		if err != nil {
			logger.Error("Batch run failed", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
		reporter.PrintBatchSummary(result, logger)
		reporter.PrintCallMetrics(metrics.GetSnapshot())
		return nil
	}

	scenarioResult := seq.RunOne(ctx, target)
	logger.Info("Scenario run finished", map[string]interface{}{
		"file":    scenarioResult.File,
		"outcome": string(scenarioResult.Outcome),
		"state":   scenarioResult.FinalState.String(),
	})
	reporter.PrintCallMetrics(metrics.GetSnapshot())
	return nil
}

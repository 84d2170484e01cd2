package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued resume screenings with the analyzer agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = cfg.RabbitMQ.Workers
		}
		return runWorkers(ctx, workers)
	},
}

func init() {
	workerCmd.Flags().Int("workers", 0, "number of consumers (default rabbitmq.workers)")
	rootCmd.AddCommand(workerCmd)
}

func runWorkers(ctx context.Context, workers int) error {
	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	if objects == nil {
		return fmt.Errorf("r2 credentials are required for the worker")
	}

	store, err := openCandidates(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	conn, publisher, err := dialQueue(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	analyzer, err := newAgentAnalyzer(ctx, cfg.Gemini.APIKey, cfg.Gemini.AnalyzerModel)
	if err != nil {
		return err
	}

	wc := &WorkerConfig{
		Candidates: store,
		Objects:    objects,
		Updates:    publisher,
		Analyzer:   analyzer,
		Log:        log.With(map[string]interface{}{"component": "worker"}),
		RabbitURL:  cfg.RabbitMQ.URL,
		Queue:      cfg.RabbitMQ.Queue,
	}
	log.Info("starting consumer pool", map[string]interface{}{"workers": workers, "queue": cfg.RabbitMQ.Queue})
	wc.StartConsumerWorkerPool(ctx, workers)
	return nil
}

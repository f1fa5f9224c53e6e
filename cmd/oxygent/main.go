// Command oxygent runs the GAIA benchmark harness and the chat server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jd-opensource/oxygent-go/config"
	"github.com/jd-opensource/oxygent-go/gaia"
	"github.com/jd-opensource/oxygent-go/llm"
	"github.com/jd-opensource/oxygent-go/mas"
	"github.com/jd-opensource/oxygent-go/server"
)

var version = "1.0.0"

func main() {
	app := kingpin.New("oxygent", "Multi-agent runtime and GAIA benchmark harness.")
	configPath := app.Flag("config", "YAML config file path.").Default("config.yaml").String()
	envFile := app.Flag("env-file", "Env file path, loaded without overriding process env.").Default(".env").String()

	benchCmd := app.Command("bench", "Run the full GAIA benchmark suite.")
	benchDataset := benchCmd.Flag("dataset", "Path to metadata.jsonl; defaults to the cached copy.").String()
	benchConcurrency := benchCmd.Flag("concurrency", "Suite worker count.").Int()
	benchResume := benchCmd.Flag("resume", "Skip tasks already succeeded in the checkpoint.").Default("true").Bool()

	singleCmd := app.Command("single", "Run a single GAIA test case.")
	singleTaskID := singleCmd.Flag("task-id", "Task ID from the dataset.").String()
	singleQuestion := singleCmd.Flag("question", "Ad-hoc question instead of a dataset task.").String()
	singleDataset := singleCmd.Flag("dataset", "Path to metadata.jsonl; defaults to the cached copy.").String()

	serveCmd := app.Command("serve", "Run the chat/inspection HTTP server.")

	versionCmd := app.Command("version", "Print the version.")

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == versionCmd.FullCommand() {
		fmt.Println("oxygent", version)
		return
	}

	cfg, err := config.NewLoader().
		WithConfigPath(*configPath).
		WithEnvFile(*envFile).
		WithValidator(func(c *config.Config) error { return c.Validate() }).
		Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case benchCmd.FullCommand():
		if *benchConcurrency > 0 {
			cfg.Bench.Concurrency = *benchConcurrency
		}
		cfg.Bench.Resume = *benchResume
		if *benchDataset != "" {
			cfg.Bench.Dataset = *benchDataset
		}
		err = runBench(ctx, cfg, logger)

	case singleCmd.FullCommand():
		if *singleTaskID == "" && *singleQuestion == "" {
			err = fmt.Errorf("either --task-id or --question is required")
			break
		}
		if *singleDataset != "" {
			cfg.Bench.Dataset = *singleDataset
		}
		err = runSingle(ctx, cfg, logger, *singleTaskID, *singleQuestion)

	case serveCmd.FullCommand():
		err = runServe(ctx, cfg, logger)
	}

	if err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// buildSpace assembles the space, wiring the Redis history store when
// configured.
func buildSpace(cfg *config.Config, logger *zap.Logger) (*mas.MAS, *llm.Registry, error) {
	var opts []mas.Option
	if cfg.Redis.Addr != "" {
		client, err := newRedisClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, mas.WithHistory(mas.NewRedisHistory(client, cfg.Redis.TTL)))
	}
	return gaia.BuildSpace(cfg, logger, opts...)
}

func runBench(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	space, _, err := buildSpace(cfg, logger)
	if err != nil {
		return err
	}

	dataset := gaia.NewDataset(cfg.Cache.Dir, cfg.Tools.HFToken, logger)
	tasks, err := dataset.Load(ctx, cfg.Bench.Dataset)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	cp, err := gaia.OpenCheckpoint(cfg.Output.Dir + "/checkpoint.csv")
	if err != nil {
		return err
	}
	defer cp.Close()

	failedCP, err := gaia.OpenCheckpoint(cfg.Output.Dir + "/failed_checkpoint.csv")
	if err != nil {
		return err
	}
	defer failedCP.Close()

	store, err := gaia.OpenStore(cfg.Output.Dir + "/runs.db")
	if err != nil {
		return err
	}
	defer store.Close()

	runner := gaia.NewRunner(space, cfg, logger)
	summary, err := runner.RunSuite(ctx, tasks, cp, failedCP, store)
	if summary != nil {
		fmt.Printf("run %s: %d total, %d ran, %d skipped, %d succeeded, %d failed in %s\n",
			summary.RunID, summary.Total, summary.Ran, summary.Skipped,
			summary.Succeeded, summary.Failed, summary.Elapsed.Round(time.Second))
	}
	return err
}

func runSingle(ctx context.Context, cfg *config.Config, logger *zap.Logger, taskID, question string) error {
	space, _, err := buildSpace(cfg, logger)
	if err != nil {
		return err
	}

	var tasks []gaia.Task
	if taskID != "" {
		dataset := gaia.NewDataset(cfg.Cache.Dir, cfg.Tools.HFToken, logger)
		tasks, err = dataset.Load(ctx, cfg.Bench.Dataset)
		if err != nil {
			return err
		}
	}

	runner := gaia.NewRunner(space, cfg, logger)
	res, err := runner.RunSingle(ctx, tasks, taskID, question)
	if err != nil {
		return err
	}

	fmt.Printf("task: %s\nstatus: %s\nresponse: %s\n", res.TaskID, res.Status, res.Response)
	if res.TrueAnswer != "" {
		fmt.Printf("reference answer: %s\n", res.TrueAnswer)
	}
	if res.Error != "" {
		fmt.Printf("error: %s\n", res.Error)
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	space, providers, err := buildSpace(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, space, logger, server.WithProviders(providers))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}

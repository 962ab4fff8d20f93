package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yourorg/airdrop-checker/internal/checker"
	"github.com/yourorg/airdrop-checker/internal/config"
	"github.com/yourorg/airdrop-checker/internal/fetch"
	"github.com/yourorg/airdrop-checker/internal/metrics"
	"github.com/yourorg/airdrop-checker/internal/otel"
	"github.com/yourorg/airdrop-checker/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	envFile string
	format  string
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts := options{}

	root := &cobra.Command{
		Use:           "airdrop-checker",
		Short:         "Check a wallet against the airdrop eligibility criteria",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return check(cmd.Context(), opts, stdout, stderr)
		},
	}
	root.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.Flags().StringVar(&opts.format, "format", formatText, "report format (text|json)")
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	// cobra rejected the command line
	fmt.Fprintf(stderr, "❌ %v\n", err)
	return exitConfig
}

func check(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	setupLogging(stderr)

	if opts.format != formatText && opts.format != formatJSON {
		fmt.Fprintf(stderr, "❌ Unknown report format %q, expected %s or %s\n", opts.format, formatText, formatJSON)
		return &exitError{code: exitConfig}
	}

	if err := config.LoadEnvFile(opts.envFile); err != nil {
		logrus.WithError(err).Error("Failed to load env file")
		fmt.Fprintf(stderr, "❌ Configuration error: %v\n", err)
		return &exitError{code: exitConfig}
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Error("Invalid configuration")
		fmt.Fprintf(stderr, "❌ Configuration error: %v\n", err)
		return &exitError{code: exitConfig}
	}

	shutdown := otel.InitTracer(ctx, cfg.OtelEndpoint)
	defer shutdown()

	httpClient := fetch.NewHTTPClient(cfg.RequestTimeout)
	indexer := fetch.NewIndexerClient(cfg.IndexerURL, cfg.APIKey, httpClient)

	rpcClient, err := fetch.NewRPCClient(ctx, cfg.RPCURL, httpClient)
	if err != nil {
		return fail(stderr, err)
	}
	defer rpcClient.Close()

	recorder := metrics.NewRecorder()
	c := checker.New(cfg, indexer, rpcClient, checker.WithMetrics(recorder))

	logrus.WithField("address", cfg.WalletAddress).Info("Checking airdrop eligibility")

	result, err := c.Run(ctx)
	if err != nil {
		return fail(stderr, err)
	}

	switch opts.format {
	case formatJSON:
		data, err := report.RenderJSON(*result)
		if err != nil {
			return fail(stderr, err)
		}
		if _, err := stdout.Write(data); err != nil {
			return fail(stderr, err)
		}
	default:
		if _, err := io.WriteString(stdout, report.RenderText(*result)); err != nil {
			return fail(stderr, err)
		}
	}

	if cfg.PushgatewayURL != "" {
		if err := recorder.Push(cfg.PushgatewayURL, cfg.WalletAddress, httpClient); err != nil {
			logrus.WithError(err).Warn("Failed to push metrics")
		}
	}

	return nil
}

func fail(stderr io.Writer, err error) error {
	logrus.WithError(err).Error("Eligibility check failed")
	fmt.Fprintf(stderr, "❌ An error occurred: %s\n", singleLine(err.Error()))
	return &exitError{code: exitFailure, err: err}
}

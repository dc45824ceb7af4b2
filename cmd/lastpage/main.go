package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/lastpage/pkg/discovery"
	"github.com/Sternrassler/lastpage/pkg/logging"
	"github.com/Sternrassler/lastpage/pkg/metrics"
	"github.com/Sternrassler/lastpage/pkg/store"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		flags      = defaultSettings()
	)

	rootCmd := &cobra.Command{
		Use:   "lastpage",
		Short: "Find the last populated page of a paginated collection",
		Long: `lastpage probes a paginated collection over HTTP and finds the index of its
last populated page, for providers that do not expose a total page count.

A page counts as populated when it answers 200 with a body larger than the
populated-page threshold.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.RedisURL, "redis-url", flags.RedisURL, "Redis address or redis:// URL for result records")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flags.LogPretty, "log-pretty", flags.LogPretty, "Human-readable console logs")

	discoverCmd := &cobra.Command{
		Use:   "discover [base-url]",
		Short: "Discover the last populated page",
		Long:  "Probe base-url followed by page indices and print the last populated page as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.BaseURL = args[0]
			}
			s, err := resolve(cmd, configFile, flags)
			if err != nil {
				return err
			}
			return runDiscover(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	discoverCmd.Flags().StringVar(&flags.PageSuffix, "page-suffix", flags.PageSuffix, "Suffix appended after the page index (e.g. \"/\")")
	discoverCmd.Flags().IntVar(&flags.FirstPage, "first-page", flags.FirstPage, "Index of the first page")
	discoverCmd.Flags().IntVar(&flags.ScopeSize, "scope-size", flags.ScopeSize, "Pages searched per scope before advancing")
	discoverCmd.Flags().IntVar(&flags.Threshold, "threshold", flags.Threshold, "Body size in bytes a populated page must exceed")
	discoverCmd.Flags().IntVar(&flags.MaxScopes, "max-scopes", flags.MaxScopes, "Give up after this many scopes (0 = never)")
	discoverCmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Per-probe timeout")
	discoverCmd.Flags().StringVar(&flags.UserAgent, "user-agent", flags.UserAgent, "User-Agent header")
	discoverCmd.Flags().DurationVar(&flags.RecordTTL, "record-ttl", flags.RecordTTL, "Expiry of the stored result (0 = keep)")
	discoverCmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", flags.MetricsAddr, "Serve Prometheus metrics on this address during the run")

	lastCmd := &cobra.Command{
		Use:   "last [base-url]",
		Short: "Show the last recorded result for a collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.BaseURL = args[0]
			}
			s, err := resolve(cmd, configFile, flags)
			if err != nil {
				return err
			}
			return runLast(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(lastCmd)

	return rootCmd
}

func runDiscover(ctx context.Context, s settings, stdout, stderr io.Writer) error {
	logger := setupLogging(s, stderr)

	opts := s.options()

	if s.RedisURL != "" {
		redisClient, err := newRedisClient(s.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		recorder := store.NewRecorder(redisClient, s.RecordTTL)
		if err := recorder.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("redis_url", s.RedisURL).Msg("Redis unavailable, result will not be recorded")
		} else {
			opts.Recorder = recorder
		}
	}

	if s.MetricsAddr != "" {
		srv := metrics.NewServer(s.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Str("addr", s.MetricsAddr).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info().Str("addr", s.MetricsAddr).Msg("Serving metrics")
	}

	result, err := discovery.Run(ctx, opts)
	if err != nil {
		return err
	}

	return writeJSON(stdout, result)
}

func runLast(ctx context.Context, s settings, stdout, stderr io.Writer) error {
	setupLogging(s, stderr)

	if s.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if s.RedisURL == "" {
		return fmt.Errorf("redis url is required (--redis-url or LASTPAGE_REDIS_URL)")
	}

	redisClient, err := newRedisClient(s.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	rec, err := store.NewRecorder(redisClient, 0).Last(ctx, s.BaseURL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no result recorded for %s", s.BaseURL)
		}
		return err
	}

	return writeJSON(stdout, rec)
}

func setupLogging(s settings, stderr io.Writer) zerolog.Logger {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(s.LogLevel),
		Pretty: s.LogPretty,
		Output: stderr,
	})
	return logging.NewLogger("cli")
}

// newRedisClient accepts either a host:port address or a redis:// URL.
func newRedisClient(redisURL string) (*redis.Client, error) {
	if strings.Contains(redisURL, "://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

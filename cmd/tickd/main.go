// Command tickd is the operator CLI for the ticket consistency engine. It
// constructs the three store adapters from configuration and drives the
// lifecycle manager directly; it is not a network transport.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/config"
	"github.com/stackline/tickd/internal/engine"
	"github.com/stackline/tickd/internal/events"
	"github.com/stackline/tickd/internal/store/postgres"
	"github.com/stackline/tickd/internal/store/qdrant"
	redisstore "github.com/stackline/tickd/internal/store/redis"
)

var (
	configPath string
	jsonOutput bool

	cfg       *config.Config
	fast      *redisstore.Store
	archive   *postgres.Store
	vector    *qdrant.Index
	publisher events.Publisher
	eng       *engine.Engine
)

func defaultConfigPath() string {
	if p := os.Getenv("TICKD_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := home + "/.config/tickd/config.toml"
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

var rootCmd = &cobra.Command{
	Use:   "tickd",
	Short: "Ticket tracking across the fast index store, durable archive, and vector index",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		fast = redisstore.New(cfg.RedisAddr)
		if err := fast.Ping(cmd.Context()); err != nil {
			return err
		}

		archive, err = postgres.New(cfg.DatabaseURL, slog.Default())
		if err != nil {
			return err
		}

		// The vector tier is best-effort end to end: if it is unreachable the
		// engine runs without it and semantic operations are unavailable.
		vector, err = qdrant.New(cmd.Context(), cfg.QdrantHost, cfg.QdrantPort, cfg.Collection, cfg.VectorDims)
		if err != nil {
			slog.Warn("vector index unavailable; continuing without it", "error", err)
			vector = nil
		}

		publisher = events.Publisher(&events.NoopPublisher{})
		if cfg.NATSURL != "" {
			publisher, err = events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				return err
			}
		}

		opts := engine.Options{
			Embedder:  localEmbedder{dims: cfg.VectorDims},
			Publisher: publisher,
			Retention: cfg.Retention,
		}
		if vector != nil {
			opts.Vector = vector
		}
		eng = engine.New(fast, archive, opts)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if publisher != nil {
			publisher.Close()
		}
		if vector != nil {
			vector.Close()
		}
		if archive != nil {
			archive.Close()
		}
		if fast != nil {
			fast.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to TOML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/export"
)

// destinationsFromConfig builds the configured export targets. Both S3 and
// a local file may be active at once.
func destinationsFromConfig(cmd *cobra.Command) ([]export.Destination, error) {
	var dests []export.Destination
	if cfg.ExportS3Bucket != "" {
		s3dest, err := export.NewS3Destination(cmd.Context(),
			cfg.ExportS3Bucket, cfg.ExportS3Key, cfg.ExportS3Region, cfg.ExportEndpoint)
		if err != nil {
			return nil, err
		}
		dests = append(dests, s3dest)
	}
	if cfg.ExportFile != "" {
		dests = append(dests, export.NewFileDestination(cfg.ExportFile))
	}
	return dests, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the durable archive as JSONL",
	Long:  "Writes every archived ticket snapshot as JSONL to stdout, or runs the periodic exporter against the configured S3/file destinations with --watch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		outPath, _ := cmd.Flags().GetString("output")

		if watch {
			if cfg.ExportInterval <= 0 {
				return fmt.Errorf("export interval not configured (set TICKD_EXPORT_INTERVAL)")
			}
			dests, err := destinationsFromConfig(cmd)
			if err != nil {
				return err
			}
			if len(dests) == 0 {
				return fmt.Errorf("no export destination configured (set TICKD_EXPORT_S3_BUCKET or TICKD_EXPORT_FILE)")
			}

			sched := export.NewScheduler(archive, dests, cfg.ExportInterval, slog.Default())
			sched.Start()
			fmt.Fprintf(cmd.ErrOrStderr(), "exporting every %s (ctrl-c to stop)\n", cfg.ExportInterval)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sig:
			case <-cmd.Context().Done():
			}
			sched.Stop()
			return nil
		}

		if outPath != "" {
			dest := export.NewFileDestination(outPath)
			return exportTo(cmd, dest)
		}
		return export.WriteJSONL(cmd.Context(), archive, os.Stdout)
	},
}

func exportTo(cmd *cobra.Command, dest export.Destination) error {
	var buf bytes.Buffer
	if err := export.WriteJSONL(cmd.Context(), archive, &buf); err != nil {
		return err
	}
	return dest.Write(cmd.Context(), buf.Bytes())
}

func init() {
	exportCmd.Flags().BoolP("watch", "w", false, "run the periodic exporter against configured destinations")
	exportCmd.Flags().StringP("output", "o", "", "write a one-shot export to this file instead of stdout")
}

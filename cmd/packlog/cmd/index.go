package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ssargent/packlog/pkg/logfile"
	"github.com/ssargent/packlog/pkg/snapshot"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <log-file>",
	Short: "Index a log into a snapshot store",
	Long: `Scan a log and store the latest record of every message type in a
pebble snapshot store, so later lookups skip the log scan.

Example:
  packlog index --snapshot-dir ./snapshots flight.sslog`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("snapshot-dir")

		reader, err := logfile.Open(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		store, err := snapshot.Open(dir)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, count, err := store.IndexLog(reader, args[0])
		if err != nil {
			return err
		}

		log.Info().Str("run", runID.String()).Int("records", count).Msg("indexed log")
		fmt.Printf("Indexed %d records (run %s)\n", count, runID)
		return nil
	},
}

func init() {
	indexCmd.Flags().String("snapshot-dir", "./snapshots", "Snapshot store directory")
	rootCmd.AddCommand(indexCmd)
}

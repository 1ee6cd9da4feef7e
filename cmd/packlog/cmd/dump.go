package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/packlog/pkg/dynamic"
	"github.com/ssargent/packlog/pkg/logfile"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <log-file>",
	Short: "Dump the latest record of every message type",
	Long: `Read the whole log and print the most recent record of each message
type as YAML (or JSON with --json).

Example:
  packlog dump flight.sslog
  packlog dump --json flight.sslog`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		reader, err := logfile.Open(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		trees, err := reader.LoadAll()
		if err != nil {
			return err
		}
		log.Debug().Int("messages", len(trees)).Msg("log scan complete")

		out := make(map[string]any, len(trees))
		for name, tree := range trees {
			out[name] = dynamic.Native(tree)
		}

		var data []byte
		if asJSON {
			data, err = json.MarshalIndent(out, "", "  ")
		} else {
			data, err = yaml.Marshal(out)
		}
		if err != nil {
			return err
		}

		fmt.Println(string(data))
		return nil
	},
}

func init() {
	dumpCmd.Flags().Bool("json", false, "Print JSON instead of YAML")
	rootCmd.AddCommand(dumpCmd)
}

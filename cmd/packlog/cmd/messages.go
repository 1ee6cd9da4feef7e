package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/packlog/pkg/logfile"
)

// messagesCmd represents the messages command
var messagesCmd = &cobra.Command{
	Use:   "messages <log-file>",
	Short: "List the message types a log declares",
	Long: `List every message type in the log's embedded schema with its
structural uid and packed size.

Example:
  packlog messages flight.sslog`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := logfile.Open(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		fmt.Printf("%-32s %-10s %s\n", "NAME", "UID", "PACKED SIZE")
		for _, msg := range reader.Builder().Messages() {
			fmt.Printf("%-32s 0x%08X %d\n", msg.Name(), msg.UID(), msg.PackedSize())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(messagesCmd)
}

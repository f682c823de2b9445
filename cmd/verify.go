package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [disk-copy]",
	Short: "Validate structure and checksums of a DC42 container",
	Long: `Verify decodes the container header, prints its description, and
checks the data checksum over the payload. When the header declares tag
bytes, the tag checksum is checked as well.

Example:
  go-dc42 verify floppy.dc42`,

	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newImager()
		if err != nil {
			fail(err)
		}
		header, err := svc.Verify(args[0])
		if err != nil {
			fail(err)
		}
		if !quiet {
			fmt.Printf("Read header: %s", header)
			fmt.Println("Checksums OK.")
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

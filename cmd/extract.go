package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ignoreChecksum bool

var extractCmd = &cobra.Command{
	Use:   "extract [disk-copy] [output-image]",
	Short: "Extract the data region of a DC42 container into a raw image",
	Long: `Extract decodes and validates the container header, then copies
exactly the declared data region into the output image while recomputing the
data checksum. A checksum mismatch aborts unless --ignore-checksum downgrades
it to a warning.

Example:
  go-dc42 extract floppy.dc42 floppy.img`,

	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newImager()
		if err != nil {
			fail(err)
		}
		n, err := svc.Extract(args[0], args[1], ignoreChecksum)
		if err != nil {
			fail(err)
		}
		if !quiet {
			fmt.Printf("Read %d bytes (%d HFS blocks).\n", n, n/512)
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// The ignore-checksum policy applies to extract only; create and verify
	// reject the flag as an unknown argument.
	extractCmd.Flags().BoolVar(&ignoreChecksum, "ignore-checksum", false,
		"extract data even if the data checksum does not match the header")
}

package cmd

import "github.com/spf13/cobra"

var createCmd = &cobra.Command{
	Use:   "create [input-image] [disk-copy]",
	Short: "Encode a raw HFS volume image into a DC42 container",
	Long: `Create reads a raw HFS floppy volume image, derives a Disk Copy 4.2
header from its Master Directory Block, and writes the header followed by the
image payload.

Example:
  go-dc42 create floppy.img floppy.dc42`,

	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newImager()
		if err != nil {
			fail(err)
		}
		if err := svc.Create(args[0], args[1]); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}

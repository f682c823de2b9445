package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var describeImage bool

var describeCmd = &cobra.Command{
	Use:   "describe [path]",
	Short: "Print the decoded header or volume metadata of a file",
	Long: `Describe prints the decoded DC42 header of a container, or with
--image the HFS Master Directory Block of a raw volume image.

Examples:
  go-dc42 describe floppy.dc42
  go-dc42 describe --image floppy.img`,

	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := newImager()
		if err != nil {
			fail(err)
		}
		var desc string
		if describeImage {
			desc, err = svc.DescribeImage(args[0])
		} else {
			desc, err = svc.DescribeContainer(args[0])
		}
		if err != nil {
			fail(err)
		}
		fmt.Print(desc)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().BoolVar(&describeImage, "image", false,
		"treat the path as a raw HFS volume image and describe its MDB")
}

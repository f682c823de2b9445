package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-dc42/internal/config"
	"github.com/deploymenttheory/go-dc42/internal/services"
)

var (
	// Global output flags only
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "go-dc42",
	Short: "Apple Disk Copy 4.2 disk-image tool",
	Long: `go-dc42 converts between uncompressed Apple Disk Copy 4.2 ("DC42")
disk images and raw HFS floppy volume images.

Commands:
  create      encode a raw HFS volume image into a DC42 container
  extract     extract the data region of a DC42 container into a raw image
  verify      validate structure and checksums of a DC42 container
  describe    print the decoded header or volume metadata of a file`,
	Version: "0.1.0-dev",
}

// Execute runs the root command. Argument and usage errors exit with code 1;
// commands exit with code 2 themselves when a core operation fails.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
}

// newImager assembles the imaging service from tool configuration and the
// global output flags.
func newImager() (services.Imager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if quiet {
		logger.SetLevel(logrus.ErrorLevel)
	}
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return services.NewImagingService(cfg, logger), nil
}

// fail reports a core failure and exits with the core-failure code.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

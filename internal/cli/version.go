package cli

import (
	"fmt"

	"resumecritic/internal/extract"

	"github.com/spf13/cobra"
)

var (
	// Version information - can be set during build with ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information for resumecritic",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("resumecritic version %s\n", Version)
		fmt.Printf("Parser version: %s\n", extract.ParserVersion)
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build date: %s\n", BuildDate)
	},
}

package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, build date, and Go version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fprintf(w, "agentctl version %s\n", Version)
		fprintf(w, "  commit:  %s\n", Commit)
		fprintf(w, "  built:   %s\n", Date)
		fprintf(w, "  go:      %s\n", runtime.Version())
		fprintf(w, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

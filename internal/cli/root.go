package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// Exit codes: usage and configuration errors exit 1; I/O failures opening
// the baseline, archive, or output exit 2.
const (
	exitUsage = 1
	exitIO    = 2
)

// ioError marks setup/teardown I/O failures so Execute can exit with a
// status distinct from usage errors.
type ioError struct {
	err error
}

func (e *ioError) Error() string { return e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lambdalens",
	Short: "Differential Java API surface analyzer",
	Long: `Lambdalens compares two snapshots of a Java library's public surface to
find functional interfaces, the methods that can take lambda expressions as
parameters, and the methods that return streams - and which of those are new
relative to the baseline snapshot.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var ioErr *ioError
		if errors.As(err, &ioErr) {
			os.Exit(exitIO)
		}
		os.Exit(exitUsage)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

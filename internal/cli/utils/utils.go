package utils

import (
	"fmt"
	"io"
	"os"

	"pkgbump/internal/systemcodes"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

type runCommandError func(*cobra.Command, []string) error
type runCommandNoError func(*cobra.Command, []string)

// RunCommandWrapper prints the error returned by fn and exits with the code
// matching its kind.
func RunCommandWrapper(fn runCommandError) runCommandNoError {
	return func(cmd *cobra.Command, args []string) {
		err := fn(cmd, args)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			exit(systemcodes.FromError(err))
		}
	}
}

// SetUpLogging configures zerolog and the logrus logger used by the
// Bitbucket client.
func SetUpLogging(w io.Writer, verbose bool) {
	level, lrLevel := zerolog.WarnLevel, logrus.WarnLevel
	if verbose {
		level, lrLevel = zerolog.DebugLevel, logrus.DebugLevel
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: true})

	logrus.SetOutput(w)
	logrus.SetLevel(lrLevel)
}

package cli

import (
	"fmt"
	"os"

	bumpcmd "pkgbump/internal/cli/bump"
	historycmd "pkgbump/internal/cli/history"
	"pkgbump/internal/cli/paramutils"
	"pkgbump/internal/cli/utils"
	"pkgbump/internal/systemcodes"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkgbump",
		Short: "pkgbump adds or updates a package in a Bitbucket repository",
		Long: `Clones a Bitbucket repository, sets a dependency of its package.json to the
given version, pushes the change to a new branch and opens a pull request.`,
		Version: fmt.Sprintf("%v, commit %v, built at %v", version, commit, date),
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			utils.SetUpLogging(os.Stderr, verbose)
		},
		Run: utils.RunCommandWrapper(bumpcmd.RunCmd),
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "print debug logs")
	bumpcmd.SetUpFlags(cmd)
	cmd.AddCommand(historycmd.New())
	cmd.SetGlobalNormalizationFunc(paramutils.NormalizeFlagName)

	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(systemcodes.ErrorCodeValidation)
	}
}

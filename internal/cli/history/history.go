package history

import (
	"fmt"
	"io"
	"os"

	"pkgbump/internal/cli/paramutils"
	"pkgbump/internal/cli/utils"
	"pkgbump/internal/persistance"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var (
	getRepo           = persistance.GetRepo
	stdout  io.Writer = os.Stdout
)

type historyCmdParams struct {
	Repository string
	Limit      int
}

func runCmd(cmd *cobra.Command, _ []string) error {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	params := &historyCmdParams{
		Repository: flags.GetStringOrDefault("repo", ""),
		Limit:      limit,
	}

	runs, err := getRepo().GetRuns()
	if err != nil {
		return err
	}

	execute(stdout, params, runs)

	return nil
}

func execute(out io.Writer, params *historyCmdParams, runs []*persistance.RunInfo) {
	table := uitable.New()
	table.AddRow("TIME", "REPOSITORY", "PACKAGE", "VERSION", "STATUS", "PULL REQUEST")
	table.AddRow("----", "----------", "-------", "-------", "------", "------------")

	n := 0
	for _, r := range runs {
		if params.Repository != "" && r.Repository != params.Repository {
			continue
		}
		if params.Limit > 0 && n == params.Limit {
			break
		}
		n++

		version := r.Version
		if r.Previous != "" {
			version = fmt.Sprintf("%s -> %s", r.Previous, r.Version)
		}
		result := r.PullRequest
		if r.Error != "" {
			result = r.Error
		}

		table.AddRow(r.Time.Local().Format("2006-01-02 15:04"), r.Repository, r.Package, version, r.Status, result)
	}

	if n == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}

	fmt.Fprintln(out, table.String())
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "List previous runs",
		Long:    `Lists the package updates made from this machine, most recent first`,
		Args:    cobra.NoArgs,
		Run:     utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().StringP("repo", "r", "", "only show runs for this repository")
	cmd.Flags().IntP("limit", "n", 20, "number of runs to show, 0 for all")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/marketlens/aptos-indexer/common/errs"
	"github.com/marketlens/aptos-indexer/core/constants"
	"github.com/marketlens/aptos-indexer/modules/marketplace"
	"github.com/spf13/cobra"
)

var versions = map[string]string{
	"":            constants.Version,
	"marketplace": marketplace.Version,
}

type versionCmdOptions struct {
	Modules string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show indexer version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Modules, "module", "", `Show version of a specific module. E.g. "marketplace"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, _ *cobra.Command, _ []string) error {
	version, ok := versions[opts.Modules]
	if !ok {
		return errors.Wrap(errs.Unsupported, "Invalid module name")
	}
	fmt.Println(version)
	return nil
}

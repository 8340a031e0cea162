package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	debug   bool
	envFile string
	gitDir  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "shiro",
		Short:        "Shiro — servidor web do blog",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "força log em nível debug")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "arquivo .env (ASSETPREFIX etc.)")
	cmd.PersistentFlags().StringVar(&flags.gitDir, "git-dir", "", "diretório do repositório git usado para os metadados do commit")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	return cmd
}

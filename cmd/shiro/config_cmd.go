package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"shiro/internal/buildconfig"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Imprime a configuração de build resolvida (consumida pelo build de assets)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, dotenv, err := loadEnv(flags)
			if err != nil {
				return err
			}
			// stdout é o resultado; logs vão para stderr via zap
			log, err := newLogger(isProduction(env), flags.debug)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			cfg := buildConfig(cmd.Context(), flags, env, dotenv, log)
			return writeConfig(cmd.OutOrStdout(), cfg, format, log)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "formato de saída: yaml ou json")
	return cmd
}

func writeConfig(w io.Writer, cfg buildconfig.Config, format string, log *zap.Logger) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		log.Debug("unknown config format", zap.String("format", format))
		return fmt.Errorf("unknown format %q (use yaml or json)", format)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pongarena/contractgen/internal/common/check"
	"github.com/pongarena/contractgen/internal/common/logging"
	"github.com/pongarena/contractgen/internal/pipeline"
)

func main() {
	logging.SetLogSeverityFromEnv()
	logger := logging.NewLogger("contractgen")

	defaults := pipeline.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "contractgen",
		Short: "Compile the tournament scores contract and emit its Go bindings",
		Long: "contractgen compiles one Solidity source file with optimization enabled " +
			"and writes a generated Go file holding the contract ABI and deployment bytecode. " +
			"A pinned solc is installed through solc-select when none is available.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := pipeline.Config{
				SourcePath:   viper.GetString("source"),
				ContractName: viper.GetString("contract"),
				OutputPath:   viper.GetString("output"),
				BuildDir:     viper.GetString("build-dir"),
				SolcPath:     viper.GetString("solc"),
			}
			if err := pipeline.Run(cfg, logger); err != nil {
				return err
			}
			fmt.Println(color.HiGreenString("contract bindings updated: %s", cfg.OutputPath))
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", defaults.SourcePath, "path to the solidity source file")
	cmd.Flags().StringP("contract", "c", defaults.ContractName, "contract to extract from the compiled source")
	cmd.Flags().StringP("output", "o", defaults.OutputPath, "path of the generated Go file")
	cmd.Flags().String("build-dir", defaults.BuildDir, "directory for intermediate compiler artifacts")
	cmd.Flags().String("solc", "", "solc executable to use instead of the one on PATH")

	check.PanicIfErr(viper.BindPFlags(cmd.Flags()))

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.HiRedString("contract generation failed: %v", err))
		os.Exit(1)
	}
}

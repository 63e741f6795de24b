// Package pipeline runs the contract generation steps in order: source
// check, toolchain resolution, compilation, artifact generation. Every
// failure is terminal for the run; there is no retry and no partial output.
package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pongarena/contractgen/internal/gencode"
	"github.com/pongarena/contractgen/internal/solc"
)

// Config holds the inputs of one generation run.
type Config struct {
	SourcePath   string
	ContractName string
	OutputPath   string
	BuildDir     string

	// SolcPath overrides the compiler looked up on PATH. Optional.
	SolcPath string
}

// DefaultConfig returns the paths the tool uses when invoked without flags.
func DefaultConfig() Config {
	return Config{
		SourcePath:   "contracts/PongTournamentScores.sol",
		ContractName: "PongTournamentScores",
		OutputPath:   "internal/contractconfig/contract_config.go",
		BuildDir:     "build",
	}
}

// Run executes the pipeline against cfg.
func Run(cfg Config, logger zerolog.Logger) error {
	if _, err := os.Stat(cfg.SourcePath); err != nil {
		return fmt.Errorf("contract source not found at %s: %w", cfg.SourcePath, err)
	}

	tc, err := solc.EnsureToolchain(cfg.SolcPath, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("contract", cfg.ContractName).
		Str("source", cfg.SourcePath).
		Msg("compiling contract")
	contract, err := tc.CompileContract(cfg.SourcePath, cfg.ContractName, solc.WithBuildDir(cfg.BuildDir))
	if err != nil {
		return err
	}
	if emptyABI(contract.ABI) || contract.Bytecode == "" || contract.Bytecode == "0x" {
		return errors.New("compiler produced an empty interface description or bytecode")
	}

	err = gencode.WriteFile(cfg.OutputPath, gencode.Input{
		Source:       cfg.SourcePath,
		ContractName: cfg.ContractName,
		ABI:          contract.ABI,
		Bytecode:     contract.Bytecode,
	})
	if err != nil {
		return err
	}

	logger.Info().Str("path", cfg.OutputPath).Msg("contract bindings written")
	return nil
}

// emptyABI reports whether the decoded interface description carries no
// entries. Older solc releases emit the abi as a JSON string.
func emptyABI(abi any) bool {
	switch v := abi.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case string:
		return v == "" || v == "[]"
	}
	return false
}

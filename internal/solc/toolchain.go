// Package solc locates the Solidity compiler, provisions a pinned version
// when none is usable, and compiles contract sources into ABI and bytecode.
package solc

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/fabelx/go-solc-select/pkg/config"
	"github.com/fabelx/go-solc-select/pkg/installer"
	"github.com/fabelx/go-solc-select/pkg/versions"
	"github.com/rs/zerolog"
)

// PinnedVersion is installed through solc-select when no suitable compiler
// is reachable. Compilers older than this are rejected by the probe.
const PinnedVersion = "0.8.19"

var (
	versionRegexp = regexp.MustCompile(`[0-9]+\.[0-9]+\.[0-9]+`)
	minVersion    = semver.MustParse(PinnedVersion)
)

// Toolchain is a resolved solc executable together with its reported version.
type Toolchain struct {
	path    string
	version *semver.Version
	logger  zerolog.Logger
}

func (tc *Toolchain) Path() string { return tc.path }

func (tc *Toolchain) Version() string { return tc.version.String() }

// NewToolchain probes the given solc executable with a version query.
// An empty path means "solc" from PATH.
func NewToolchain(solcPath string, logger zerolog.Logger) (*Toolchain, error) {
	if solcPath == "" {
		solcPath = "solc"
	}
	resolved, err := exec.LookPath(solcPath)
	if err != nil {
		return nil, fmt.Errorf("solc compiler not found: %w", err)
	}

	cmd := exec.Command(resolved, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to query solc version: %w", err)
	}

	raw := versionRegexp.FindString(out.String())
	if raw == "" {
		return nil, fmt.Errorf("unrecognized solc version output: %q", out.String())
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse solc version %q: %w", raw, err)
	}
	if version.LessThan(minVersion) {
		return nil, fmt.Errorf("solc %s is older than the required %s", version, PinnedVersion)
	}

	return &Toolchain{path: resolved, version: version, logger: logger}, nil
}

// EnsureToolchain returns a usable compiler, installing PinnedVersion through
// solc-select when the probe fails. Installing is a deliberate side effect
// and is always logged.
func EnsureToolchain(solcPath string, logger zerolog.Logger) (*Toolchain, error) {
	tc, probeErr := NewToolchain(solcPath, logger)
	if probeErr == nil {
		logger.Info().
			Str("path", tc.path).
			Str("version", tc.Version()).
			Msg("Solidity compiler found")
		return tc, nil
	}

	logger.Warn().
		Err(probeErr).
		Msgf("Solidity compiler unavailable, installing %s", PinnedVersion)

	installed, err := installPinned()
	if err != nil {
		return nil, fmt.Errorf("failed to provision compiler: %w", err)
	}
	tc, err = NewToolchain(installed, logger)
	if err != nil {
		return nil, fmt.Errorf("installed compiler failed the version probe: %w", err)
	}
	logger.Info().
		Str("path", tc.path).
		Str("version", tc.Version()).
		Msg("Solidity compiler installed")
	return tc, nil
}

// installPinned registers PinnedVersion with solc-select and resolves its
// binary from the artifacts directory. A func var so tests can simulate
// provisioning without the network.
var installPinned = func() (string, error) {
	if _, ok := versions.GetInstalled()[PinnedVersion]; !ok {
		if err := installer.InstallSolc(PinnedVersion); err != nil {
			return "", fmt.Errorf("failed to install solc %s: %w", PinnedVersion, err)
		}
	}
	installed, ok := versions.GetInstalled()[PinnedVersion]
	if !ok {
		return "", fmt.Errorf("solc %s is not registered after install", PinnedVersion)
	}

	name := "solc-" + installed
	path := filepath.Join(config.SolcArtifacts, name, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("failed to find installed solc %s: %w", PinnedVersion, err)
	}
	return path, nil
}

package solc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pongarena/contractgen/internal/common/logging"
)

const fakeVersionPrelude = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "solc, the solidity compiler commandline interface"
  echo "Version: 0.8.19+commit.7dd6d404.Linux.g++"
  exit 0
fi
`

func writeFakeSolc(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "solc")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestNewToolchainProbesVersion(t *testing.T) {
	t.Parallel()

	solcPath := writeFakeSolc(t, fakeVersionPrelude+"exit 1\n")

	tc, err := NewToolchain(solcPath, logging.Nop())
	require.NoError(t, err)
	require.Equal(t, "0.8.19", tc.Version())
	require.Equal(t, solcPath, tc.Path())
}

func TestNewToolchainMissingExecutable(t *testing.T) {
	t.Parallel()

	_, err := NewToolchain(filepath.Join(t.TempDir(), "no-such-solc"), logging.Nop())
	require.ErrorContains(t, err, "solc compiler not found")
}

func TestNewToolchainRejectsOldCompiler(t *testing.T) {
	t.Parallel()

	solcPath := writeFakeSolc(t, `#!/bin/sh
echo "Version: 0.4.24+commit.e67f0147.Linux.g++"
`)

	_, err := NewToolchain(solcPath, logging.Nop())
	require.ErrorContains(t, err, "older than the required")
}

func TestNewToolchainRejectsGarbageVersionOutput(t *testing.T) {
	t.Parallel()

	solcPath := writeFakeSolc(t, `#!/bin/sh
echo "not a compiler"
`)

	_, err := NewToolchain(solcPath, logging.Nop())
	require.ErrorContains(t, err, "unrecognized solc version output")
}

func TestEnsureToolchainUsesReachableCompiler(t *testing.T) {
	solcPath := writeFakeSolc(t, fakeVersionPrelude+"exit 1\n")

	tc, err := EnsureToolchain(solcPath, logging.Nop())
	require.NoError(t, err)
	require.Equal(t, solcPath, tc.Path())
}

// overrideInstall replaces the provisioning step for the duration of a test.
func overrideInstall(t *testing.T, install func() (string, error)) {
	t.Helper()

	orig := installPinned
	installPinned = install
	t.Cleanup(func() { installPinned = orig })
}

func TestEnsureToolchainInstallsWhenProbeFails(t *testing.T) {
	installedPath := writeFakeSolc(t, fakeVersionPrelude+"exit 1\n")
	overrideInstall(t, func() (string, error) {
		return installedPath, nil
	})

	tc, err := EnsureToolchain(filepath.Join(t.TempDir(), "no-such-solc"), logging.Nop())
	require.NoError(t, err)
	require.Equal(t, installedPath, tc.Path())
	require.Equal(t, "0.8.19", tc.Version())
}

func TestEnsureToolchainFailsWhenInstallFails(t *testing.T) {
	overrideInstall(t, func() (string, error) {
		return "", errors.New("download refused")
	})

	_, err := EnsureToolchain(filepath.Join(t.TempDir(), "no-such-solc"), logging.Nop())
	require.ErrorContains(t, err, "failed to provision compiler")
	require.ErrorContains(t, err, "download refused")
}

func TestEnsureToolchainRejectsBadInstalledCompiler(t *testing.T) {
	installedPath := writeFakeSolc(t, `#!/bin/sh
echo "Version: 0.4.24+commit.e67f0147.Linux.g++"
`)
	overrideInstall(t, func() (string, error) {
		return installedPath, nil
	})

	_, err := EnsureToolchain(filepath.Join(t.TempDir(), "no-such-solc"), logging.Nop())
	require.ErrorContains(t, err, "installed compiler failed the version probe")
}

package solc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/compiler"
)

// ErrContractNotFound is returned when the compiled output does not contain
// a contract with the requested name.
var ErrContractNotFound = errors.New("contract not found in compiler output")

// Contract is the compilation result consumed by the code generator.
type Contract struct {
	Name string

	// ABI is the decoded interface description, passed through as-is.
	ABI any

	// Bytecode is the deployment bytecode, hex encoded with a 0x prefix.
	Bytecode string
}

type compileOptions struct {
	buildDir     string
	basePath     string
	remapping    string
	allowedPaths []string
	optimizeRuns int
}

// CompileOption adjusts a single compiler invocation.
type CompileOption func(*compileOptions)

// WithBuildDir sets the directory that receives .abi/.bin artifacts when the
// combined-json path is unavailable.
func WithBuildDir(dir string) CompileOption {
	return func(o *compileOptions) {
		o.buildDir = dir
	}
}

// useful to reduce the size of the compiled contract
func WithOptimizeRuns(val int) CompileOption {
	return func(o *compileOptions) {
		o.optimizeRuns = val
	}
}

func WithBasePath(basePath string) CompileOption {
	return func(o *compileOptions) {
		o.basePath = basePath
	}
}

func WithAllowedPaths(paths ...string) CompileOption {
	return func(o *compileOptions) {
		o.allowedPaths = append(o.allowedPaths, paths...)
	}
}

// WithRemapping allows @name imports in .sol files to resolve against to.
func WithRemapping(from, to string) CompileOption {
	return func(o *compileOptions) {
		o.remapping = fmt.Sprintf("%s=%s", from, to)
	}
}

func (opts *compileOptions) commonArgs() []string {
	args := []string{"--optimize"}
	if opts.optimizeRuns > 0 {
		args = append(args, "--optimize-runs", strconv.Itoa(opts.optimizeRuns))
	}
	if len(opts.basePath) > 0 {
		args = append(args, "--base-path", opts.basePath)
	}
	if len(opts.remapping) > 0 {
		args = append(args, opts.remapping)
	}
	if len(opts.allowedPaths) > 0 {
		args = append(args, "--allow-paths", strings.Join(opts.allowedPaths, ","))
	}
	return args
}

func (opts *compileOptions) combinedArgs(sourcePath string) []string {
	args := append([]string{"--combined-json", "abi,bin"}, opts.commonArgs()...)
	return append(args, sourcePath)
}

func (opts *compileOptions) artifactArgs(sourcePath string) []string {
	args := append([]string{"--abi", "--bin", "--overwrite", "-o", opts.buildDir}, opts.commonArgs()...)
	return append(args, sourcePath)
}

// CompileContract compiles sourcePath with optimization enabled and extracts
// the named contract. The combined-json output is preferred; when that
// invocation fails for any reason other than a missing contract, the
// artifact-directory output is used instead.
func (tc *Toolchain) CompileContract(sourcePath, name string, options ...CompileOption) (*Contract, error) {
	opts := &compileOptions{buildDir: "build"}
	for _, o := range options {
		o(opts)
	}

	contract, primaryErr := tc.compileCombined(sourcePath, name, opts)
	if primaryErr == nil {
		return contract, nil
	}
	if errors.Is(primaryErr, ErrContractNotFound) {
		return nil, primaryErr
	}

	tc.logger.Warn().
		Err(primaryErr).
		Msg("combined-json compilation failed, falling back to artifact output")

	contract, fallbackErr := tc.compileToDir(sourcePath, name, opts)
	if fallbackErr != nil {
		return nil, fmt.Errorf("solc fallback failed: %w (combined-json: %v)", fallbackErr, primaryErr)
	}
	return contract, nil
}

func (tc *Toolchain) run(args []string) ([]byte, error) {
	cmd := exec.Command(tc.path, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute `%s`: %w.\n%s", cmd, err, stderrBuf.String())
	}
	return output, nil
}

func (tc *Toolchain) compileCombined(sourcePath, name string, opts *compileOptions) (*Contract, error) {
	output, err := tc.run(opts.combinedArgs(sourcePath))
	if err != nil {
		return nil, err
	}

	contracts, err := parseCombinedJSON(output)
	if err != nil {
		return nil, err
	}
	c, ok := contracts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, name)
	}

	code := c.Code
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	return &Contract{Name: name, ABI: c.Info.AbiDefinition, Bytecode: code}, nil
}

// parseCombinedJSON reduces solc's path:Name keys to bare contract names so
// that the caller looks contracts up by exact name.
func parseCombinedJSON(data []byte) (map[string]*compiler.Contract, error) {
	// Provide empty strings for the additional required arguments
	contracts, err := compiler.ParseCombinedJSON(
		data,
		"", /* source */
		"", /* langVersion */
		"", /* compilerVersion */
		"" /* compilerOpts */)
	if err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}

	res := make(map[string]*compiler.Contract, len(contracts))
	for key, c := range contracts {
		res[key[strings.LastIndex(key, ":")+1:]] = c
	}
	return res, nil
}

// compileToDir requests .abi/.bin artifacts into the build directory and
// reads back the two files named after the contract.
func (tc *Toolchain) compileToDir(sourcePath, name string, opts *compileOptions) (*Contract, error) {
	if err := os.MkdirAll(opts.buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create build directory %s: %w", opts.buildDir, err)
	}
	if _, err := tc.run(opts.artifactArgs(sourcePath)); err != nil {
		return nil, err
	}

	abiRaw, err := os.ReadFile(filepath.Join(opts.buildDir, name+".abi"))
	if err != nil {
		return nil, fmt.Errorf("compiler did not emit an abi for %s: %w", name, err)
	}
	var abiDef any
	if err := json.Unmarshal(abiRaw, &abiDef); err != nil {
		return nil, fmt.Errorf("failed to parse abi for %s: %w", name, err)
	}

	binRaw, err := os.ReadFile(filepath.Join(opts.buildDir, name+".bin"))
	if err != nil {
		return nil, fmt.Errorf("compiler did not emit bytecode for %s: %w", name, err)
	}
	code := strings.TrimSpace(string(binRaw))
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}

	return &Contract{Name: name, ABI: abiDef, Bytecode: code}, nil
}

// Package gencode renders the generated Go source file holding a compiled
// contract's ABI and deployment bytecode.
package gencode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"
)

// Input describes one contract binding set to render.
type Input struct {
	// Package is the package clause of the generated file. Derived from the
	// output path when empty.
	Package string

	// Source is the contract source path, recorded in the header comment.
	Source string

	// ContractName prefixes both exported bindings.
	ContractName string

	// ABI is the decoded interface description.
	ABI any

	// Bytecode is the 0x-prefixed deployment bytecode.
	Bytecode string
}

const fileTemplate = `// Code generated by contractgen from {{.Source}}; DO NOT EDIT.

package {{.Package}}

// {{.ContractName}}ABI is the interface description of the {{.ContractName}}
// contract, as emitted by solc.
const {{.ContractName}}ABI = ` + "`{{.ABIJSON}}`" + `

// {{.ContractName}}Bytecode is the contract deployment bytecode, hex encoded.
const {{.ContractName}}Bytecode = "{{.Bytecode}}"
`

var tmpl = template.Must(template.New("contractconfig").Parse(fileTemplate))

// Render produces the gofmt-ed content of the generated file. Empty inputs
// are rejected so that a failed compilation can never produce an artifact.
func Render(in Input) ([]byte, error) {
	if in.ContractName == "" {
		return nil, errors.New("contract name is empty")
	}
	if in.ABI == nil {
		return nil, errors.New("refusing to render an empty interface description")
	}
	if in.Bytecode == "" || in.Bytecode == "0x" {
		return nil, errors.New("refusing to render empty bytecode")
	}
	if !strings.HasPrefix(in.Bytecode, "0x") {
		in.Bytecode = "0x" + in.Bytecode
	}

	abiJSON, err := json.MarshalIndent(in.ABI, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal abi: %w", err)
	}
	// The ABI lands in a raw string literal.
	if bytes.ContainsRune(abiJSON, '`') {
		return nil, errors.New("abi contains a backquote and cannot be rendered")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Input
		ABIJSON string
	}{in, string(abiJSON)})
	if err != nil {
		return nil, fmt.Errorf("failed to render bindings: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated bindings do not gofmt: %w", err)
	}
	return formatted, nil
}

// WriteFile renders the bindings and writes them to path, creating parent
// directories as needed.
func WriteFile(path string, in Input) error {
	if in.Package == "" {
		in.Package = PackageForPath(path)
	}
	content, err := Render(in)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// PackageForPath derives a package name from the directory holding path,
// keeping only characters valid in a Go identifier.
func PackageForPath(path string) string {
	base := filepath.Base(filepath.Dir(path))

	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return "contractconfig"
	}
	return name
}

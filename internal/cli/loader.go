package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/qopt/internal/compiler"
	"github.com/roach88/qopt/internal/gate"
	"github.com/roach88/qopt/internal/ir"
)

// LoadMode controls how errors are handled during gate library loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the composites compiled from gate libraries.
type LoadResult struct {
	Composites []ir.CompositeSpec
	Files      []string // CUE files compiled, in walk order
	FileCount  int      // Number of CUE files found
}

// LoadError represents an error that occurred during library loading.
type LoadError struct {
	Code    string
	Message string
	File    string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadGates compiles every CUE gate library under path, which may be a
// single file or a directory walked recursively.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadGates(path string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("gate library not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing gate library: %v", err)}}
	}

	cueFiles := []string{path}
	if info.IsDir() {
		cueFiles, err = FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
	}

	result := &LoadResult{FileCount: len(cueFiles)}
	for _, file := range cueFiles {
		src, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLoadFailed, File: file, Message: fmt.Sprintf("reading CUE file: %v", err)})
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		specs, err := compiler.CompileSource(file, string(src))
		if err != nil {
			errs = append(errs, convertCompileError(err, file))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Files = append(result.Files, file)
		result.Composites = append(result.Composites, specs...)
	}

	// Check if we found anything
	if len(result.Composites) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("no gates found in %s", path)})
	}

	return result, errs
}

// BuildCatalog returns the standard catalog extended with the composites
// of every library in paths. No paths yields gate.Standard().
func BuildCatalog(paths []string) (*gate.Catalog, error) {
	var specs []ir.CompositeSpec
	for _, path := range paths {
		result, errs := LoadGates(path, LoadModeFailFast)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		specs = append(specs, result.Composites...)
	}
	if len(specs) == 0 {
		return gate.Standard(), nil
	}
	return compiler.Extend(gate.Standard(), specs)
}

// FindCUEFiles walks the directory and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, file string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			File:    file,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
		File:    file,
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Catalog or pipeline build failed
	ErrCodeWriteFailed = "E007" // File or ledger write error
)

// MapFieldToErrorCode maps a compiler error field to an error code.
// Body fields carry their index, e.g. "body[2].op".
func MapFieldToErrorCode(field string) string {
	switch {
	case strings.HasSuffix(field, ".op"):
		return compiler.ErrUnknownBodyOp
	case strings.HasSuffix(field, ".qubits"):
		return compiler.ErrQubitOutOfRange
	case field == "params" || strings.Contains(field, ".params"):
		return compiler.ErrUnknownParamRef
	default:
		return ErrCodeGeneric
	}
}

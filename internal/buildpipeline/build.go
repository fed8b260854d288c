package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ilsc/internal/driver"
)

// Artifact extensions.
const (
	AsmExt = ".asm"
	IRExt  = ".ir"
)

// BuildRequest configures output generation for a compilation.
type BuildRequest struct {
	CompileRequest
	// BaseDir is where relative output paths are computed from; files
	// outside it are written by base name.
	BaseDir string
	OutDir  string
}

// Artifact describes what was written for one source file.
type Artifact struct {
	Source  string
	AsmPath string
	IRPath  string // empty unless KeepIR
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	CompileResult
	Artifacts []Artifact
}

// Build compiles all files and writes one .asm per successfully compiled
// file (plus .ir with KeepIR). It fails when any file has errors, after
// writing the artifacts of the others.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if req.OutDir == "" {
		return result, fmt.Errorf("missing output directory")
	}

	compileRes, err := Compile(ctx, &req.CompileRequest)
	result.CompileResult = compileRes
	if err != nil {
		return result, err
	}

	outputs, err := outputPaths(req.Files, req.BaseDir, req.OutDir)
	if err != nil {
		return result, err
	}

	for i, res := range compileRes.Results {
		if res.Failed() {
			continue
		}
		start := time.Now()
		emitStage(req.Progress, res.Path, StageWrite, StatusWorking, nil, 0)
		art, werr := writeArtifacts(res, outputs[i], req.KeepIR)
		elapsed := time.Since(start)
		result.Timings.Add(StageWrite, elapsed)
		if werr != nil {
			emitStage(req.Progress, res.Path, StageWrite, StatusError, werr, elapsed)
			return result, werr
		}
		emitStage(req.Progress, res.Path, StageWrite, StatusDone, nil, elapsed)
		result.Artifacts = append(result.Artifacts, art)
	}

	if n := compileRes.Failed(); n > 0 {
		return result, fmt.Errorf("%d of %d file(s) failed to compile", n, len(compileRes.Results))
	}
	return result, nil
}

// outputPaths maps every source to its .asm path and rejects two sources
// landing on the same output.
func outputPaths(files []string, baseDir, outDir string) ([]string, error) {
	out := make([]string, len(files))
	seen := make(map[string]string, len(files))
	for i, file := range files {
		rel := filepath.Base(file)
		if baseDir != "" {
			if r, err := filepath.Rel(baseDir, file); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
		p := filepath.Join(outDir, strings.TrimSuffix(rel, filepath.Ext(rel))+AsmExt)
		if prev, dup := seen[p]; dup {
			return nil, fmt.Errorf("%s and %s both compile to %s", prev, file, p)
		}
		seen[p] = file
		out[i] = p
	}
	return out, nil
}

func writeArtifacts(res *driver.Result, asmPath string, keepIR bool) (Artifact, error) {
	art := Artifact{Source: res.Path, AsmPath: asmPath}
	if err := os.MkdirAll(filepath.Dir(asmPath), 0o750); err != nil {
		return art, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(asmPath, []byte(res.Asm), 0o600); err != nil {
		return art, fmt.Errorf("failed to write %q: %w", asmPath, err)
	}
	if keepIR {
		art.IRPath = strings.TrimSuffix(asmPath, AsmExt) + IRExt
		if err := os.WriteFile(art.IRPath, []byte(res.IR), 0o600); err != nil {
			return art, fmt.Errorf("failed to write %q: %w", art.IRPath, err)
		}
	}
	return art, nil
}

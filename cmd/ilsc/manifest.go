package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ilsc/internal/diag"
	"ilsc/internal/driver"
)

const (
	manifestName      = "ils.toml"
	defaultOutDir     = "build"
	noManifestMessage = "no ils.toml found\nplease pass the sources explicitly, e.g.:\n  ilsc build path/to/main.ils"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package  packageConfig  `toml:"package"`
	Build    buildConfig    `toml:"build"`
	Compiler compilerConfig `toml:"compiler"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type buildConfig struct {
	Sources []string `toml:"sources"`
	OutDir  string   `toml:"out_dir"`
}

type compilerConfig struct {
	KeepIR   bool `toml:"keep_ir"`
	VerifyIR bool `toml:"verify_ir"`
	Cache    bool `toml:"cache"`
	Jobs     int  `toml:"jobs"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

func manifestError(path, format string, args ...any) error {
	return diag.InFile(diag.Errorf(diag.ProjBadManifest, 0, format, args...), path)
}

func loadProjectConfig(path string) (projectConfig, error) {
	// кэш включён, пока его явно не выключили
	cfg := projectConfig{Compiler: compilerConfig{Cache: true}}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, manifestError(path, "failed to parse TOML: %v", err)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return projectConfig{}, manifestError(path, "missing [package].name")
	}
	if !meta.IsDefined("build", "sources") || len(cfg.Build.Sources) == 0 {
		return projectConfig{}, manifestError(path, "missing [build].sources")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, manifestError(path, "unknown key %s", undecoded[0])
	}
	if cfg.Compiler.Jobs < 0 {
		return projectConfig{}, manifestError(path, "[compiler].jobs must not be negative")
	}
	if cfg.Build.OutDir == "" {
		cfg.Build.OutDir = defaultOutDir
	}
	return cfg, nil
}

// sourceFiles expands the manifest sources (files or directories, relative
// to the manifest) into a sorted list of .ils files.
func (m *projectManifest) sourceFiles() ([]string, error) {
	var paths []string
	for _, s := range m.Config.Build.Sources {
		paths = append(paths, filepath.Join(m.Root, filepath.FromSlash(s)))
	}
	files, err := expandSources(paths)
	if err != nil {
		return nil, diag.InFile(diag.Errorf(diag.ProjBadManifest, 0, "[build].sources: %v", err), m.Path)
	}
	return files, nil
}

func (m *projectManifest) outDir() string {
	if filepath.IsAbs(m.Config.Build.OutDir) {
		return m.Config.Build.OutDir
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.OutDir))
}

// expandSources replaces directories with the .ils files under them and
// drops duplicates.
func expandSources(paths []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		p = filepath.Clean(p)
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if filepath.Ext(p) != driver.SourceExt {
				return nil, fmt.Errorf("%s is not a %s file", p, driver.SourceExt)
			}
			add(p)
			continue
		}
		files, err := driver.ListSources(p)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no %s files in %s", driver.SourceExt, p)
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

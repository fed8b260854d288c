package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ilsc/internal/buildpipeline"
	"ilsc/internal/diag"
	"ilsc/internal/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path...]",
	Short: "Compile .ils sources to assembly",
	Long: `Compile .ils files (or directories of them) to NASM x86-64 assembly.
Without arguments the sources are taken from the nearest ils.toml.`,
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().StringP("out-dir", "o", "", "output directory (default: [build].out_dir or ./build)")
	buildCmd.Flags().Bool("keep-ir", false, "also write the pruned IR next to each .asm")
	buildCmd.Flags().Bool("verify-ir", false, "check IR invariants before emission")
	buildCmd.Flags().Bool("no-cache", false, "ignore the on-disk cache")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// buildSettings is the merge of ils.toml and the command line; flags win.
type buildSettings struct {
	files    []string
	baseDir  string
	outDir   string
	keepIR   bool
	verifyIR bool
	cache    bool
	jobs     int
	title    string
}

func resolveBuildSettings(cmd *cobra.Command, args []string) (buildSettings, error) {
	var s buildSettings
	flags := cmd.Flags()
	if len(args) == 0 {
		manifest, found, err := loadProjectManifest(".")
		if err != nil {
			return s, err
		}
		if !found {
			return s, diag.Errorf(diag.ProjMissingManifest, 0, "%s", noManifestMessage)
		}
		if s.files, err = manifest.sourceFiles(); err != nil {
			return s, err
		}
		s.baseDir = manifest.Root
		s.outDir = manifest.outDir()
		s.keepIR = manifest.Config.Compiler.KeepIR
		s.verifyIR = manifest.Config.Compiler.VerifyIR
		s.cache = manifest.Config.Compiler.Cache
		s.jobs = manifest.Config.Compiler.Jobs
		s.title = "building " + manifest.Config.Package.Name
	} else {
		files, err := expandSources(args)
		if err != nil {
			return s, diag.Errorf(diag.IOLoadFileError, 0, "%v", err)
		}
		s.files = files
		s.baseDir, _ = os.Getwd()
		s.outDir = defaultOutDir
		s.cache = true
		s.title = fmt.Sprintf("building %d file(s)", len(files))
	}

	if flags.Changed("out-dir") {
		s.outDir, _ = flags.GetString("out-dir")
	}
	if flags.Changed("keep-ir") {
		s.keepIR, _ = flags.GetBool("keep-ir")
	}
	if flags.Changed("verify-ir") {
		s.verifyIR, _ = flags.GetBool("verify-ir")
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		s.cache = false
	}
	if cmd.Root().PersistentFlags().Changed("jobs") {
		s.jobs, _ = cmd.Root().PersistentFlags().GetInt("jobs")
	}
	return s, nil
}

func buildExecution(cmd *cobra.Command, args []string) error {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	useTUI, err := wantTUI(uiValue, quiet)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	settings, err := resolveBuildSettings(cmd, args)
	if err != nil {
		return err
	}

	var cache *driver.DiskCache
	if settings.cache {
		cache, err = driver.OpenDiskCache(cacheAppName)
		if err != nil {
			// без кэша собрать всё равно можно
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
			cache = nil
		}
	}

	req := &buildpipeline.BuildRequest{
		CompileRequest: buildpipeline.CompileRequest{
			Files:          settings.files,
			Jobs:           settings.jobs,
			MaxDiagnostics: maxDiagnostics,
			KeepIR:         settings.keepIR,
			VerifyIR:       settings.verifyIR,
			Cache:          cache,
		},
		BaseDir: settings.baseDir,
		OutDir:  settings.outDir,
	}

	var res buildpipeline.BuildResult
	if useTUI {
		res, err = runBuildWithUI(cmd.Context(), settings.title, settings.files, req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}

	color, colorErr := useColor(cmd, os.Stderr)
	if colorErr != nil {
		return colorErr
	}
	if renderErr := printDiagnostics(os.Stderr, res.Results, color); renderErr != nil {
		return renderErr
	}
	if err != nil {
		if res.Failed() > 0 {
			dumpTraceRing(cmd)
		}
		return err
	}

	if !quiet {
		for _, art := range res.Artifacts {
			rel := art.AsmPath
			if r, relErr := filepath.Rel(settings.baseDir, art.AsmPath); relErr == nil {
				rel = r
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", rel)
		}
	}
	if showTimings {
		printStageTimings(cmd.OutOrStdout(), res.Timings)
		for _, r := range res.Results {
			if r.Timing != nil && !r.Cached {
				if err := r.Timing.WriteSummary(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

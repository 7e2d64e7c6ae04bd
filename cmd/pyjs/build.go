package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pyjs/internal/buildpipeline"
	"pyjs/internal/driver"
	"pyjs/internal/mono"
	"pyjs/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [unit.yaml|dir]...",
	Short: "Emit Python or JavaScript for every unit",
	Long: `Build specializes each unit and writes the emitted output under the out
directory. Without arguments the units come from pyjs.toml.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("emit", "", "output language (py|js), overrides [build].emit")
	buildCmd.Flags().String("out-dir", "", "output directory, overrides [build].out_dir")
	buildCmd.Flags().Int("jobs", -1, "parallel units (0 = GOMAXPROCS), overrides [build].jobs")
	buildCmd.Flags().Bool("no-cache", false, "bypass the build cache")
	buildCmd.Flags().Bool("stdout", false, "print outputs instead of writing files")
	buildCmd.Flags().Bool("run-main", false, "append a call to main() to JavaScript output")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// buildSettings is the manifest merged with command-line overrides.
type buildSettings struct {
	manifest *project.Manifest
	files    []string
	stdout   bool
	runMain  bool
	ui       uiMode
}

func runBuild(cmd *cobra.Command, args []string) error {
	settings, err := resolveBuildSettings(cmd, args)
	if err != nil {
		return err
	}
	cfg := settings.manifest.Config
	emit, err := driver.ParseEmit(cfg.Build.Emit)
	if err != nil {
		return err
	}

	var cache *driver.DiskCache
	if cfg.Build.Cache {
		cache, err = driver.OpenDiskCache("pyjs")
		if err != nil && !quietFlag(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: build cache disabled: %v\n", err)
		}
	}

	req := &buildpipeline.BuildRequest{
		Files: settings.files,
		Driver: driver.Options{
			Jobs:           cfg.Build.Jobs,
			MaxDiagnostics: maxDiagnostics(cmd),
			Emit:           emit,
			Mono:           mono.Options{MaxDepth: cfg.Mono.MaxDepth},
			RunMain:        settings.runMain,
			Timings:        timingDiagnostics(cmd),
			Cache:          cache,
		},
	}
	if !settings.stdout {
		req.OutPath = settings.manifest.OutPath
	}

	var result buildpipeline.BuildResult
	if shouldUseTUI(settings.ui, quietFlag(cmd)) {
		title := "pyjs build"
		if name := cfg.Package.Name; name != "" {
			title += " " + name
		}
		result, err = runBuildWithUI(cmd.Context(), title, req)
	} else {
		result, err = buildpipeline.Build(cmd.Context(), req)
	}
	if err != nil && !errors.Is(err, buildpipeline.ErrUnitsFailed) {
		return err
	}

	for i := range result.Units {
		u := &result.Units[i]
		if perr := printDiagnostics(cmd, cmd.ErrOrStderr(), u.Bag, result.FileSet); perr != nil {
			return perr
		}
		if settings.stdout && !u.Failed() {
			writeUnitOutput(cmd.OutOrStdout(), u, len(result.Units) > 1)
		}
	}
	printTimings(cmd, cmd.ErrOrStderr(), result.Units)
	if !quietFlag(cmd) && !settings.stdout {
		fmt.Fprintf(cmd.ErrOrStderr(), "built %d of %d units\n", len(result.Written), len(result.Units))
	}
	if err != nil {
		return errReported
	}
	return nil
}

func writeUnitOutput(w io.Writer, u *driver.UnitResult, header bool) {
	if header {
		fmt.Fprintf(w, "// %s\n", u.Path)
	}
	fmt.Fprintln(w, u.Output)
}

// resolveBuildSettings loads pyjs.toml when present, applies flag overrides
// and decides which units to build.
func resolveBuildSettings(cmd *cobra.Command, args []string) (*buildSettings, error) {
	manifest, found, err := project.LoadManifest(".")
	if err != nil {
		return nil, err
	}
	if !found {
		if len(args) == 0 {
			return nil, fmt.Errorf("no %s found; pass unit files or directories", project.ManifestName)
		}
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		manifest = &project.Manifest{Root: wd, Config: project.DefaultConfig()}
	}

	flags := cmd.Flags()
	cfg := &manifest.Config
	if emit, _ := flags.GetString("emit"); emit != "" {
		cfg.Build.Emit = emit
	}
	if outDir, _ := flags.GetString("out-dir"); outDir != "" {
		// a command-line directory is relative to the working directory
		if abs, err := filepath.Abs(outDir); err == nil {
			outDir = abs
		}
		cfg.Build.OutDir = outDir
	}
	if jobs, _ := flags.GetInt("jobs"); jobs >= 0 {
		cfg.Build.Jobs = jobs
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Build.Cache = false
	}

	settings := &buildSettings{manifest: manifest}
	settings.stdout, _ = flags.GetBool("stdout")
	settings.runMain, _ = flags.GetBool("run-main")
	uiValue, _ := flags.GetString("ui")
	if settings.ui, err = readUIMode(uiValue); err != nil {
		return nil, err
	}
	if settings.stdout {
		settings.ui = uiModeOff
	}

	if len(args) > 0 {
		settings.files, err = project.ExpandArgs(args)
	} else {
		settings.files, err = manifest.ResolveUnits()
	}
	if err != nil {
		return nil, err
	}
	if len(settings.files) == 0 {
		return nil, fmt.Errorf("no unit files found")
	}
	return settings, nil
}

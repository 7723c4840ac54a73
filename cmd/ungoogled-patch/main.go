package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/crbuild/sourceprep/pkg/api"
	"github.com/crbuild/sourceprep/pkg/logging"
	"github.com/crbuild/sourceprep/pkg/pipeline"
)

var version = "dev"

const (
	_ = iota
	exitPipelineFailed
	exitDotenvError
	exitConfigDirNotSpecified
	exitConfigDirCheckFailed
	exitConfigDirNotADirectory
	exitSourceDirNotSpecified
	exitSourceDirCheckFailed
	exitSourceDirNotADirectory
	exitRequiredInputMissing
	exitLoadProfileFailed
	exitPhaseOrderInvalid
)

// requiredInputs are the specification files the ungoogled config directory
// must provide before any transformation is attempted.
var requiredInputs = []string{
	"patches",
	"domain_substitution.list",
	"domain_regex.list",
	"pruning.list",
	"flags.gn",
}

var (
	configDir   string
	sourceDir   string
	profileFile string
	stepTimeout time.Duration
	loggingType string
	logLevel    string
	showVersion bool
)

func init() {
	flag.StringVar(
		&configDir,
		"config-dir",
		"",
		"path to the ungoogled-chromium specification directory")
	flag.StringVar(
		&sourceDir,
		"source-dir",
		"",
		"path to the Chromium source checkout")
	flag.StringVar(
		&profileFile,
		"profile",
		"",
		"pipeline profile YAML (default: built-in ungoogled profile)")
	flag.DurationVar(
		&stepTimeout,
		"step-timeout",
		10*time.Minute,
		"timeout per external tool invocation")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	_ = logging.Initialize(loggingType, logLevel)

	includeEnv()
	checkConfigDirectory()
	checkSourceDirectory()
	checkRequiredInputs()

	profile := loadProfile()

	phases := pipeline.BuildPhases(profile, pipeline.Config{
		ConfigDir: configDir,
		SourceDir: sourceDir,
		Timeout:   stepTimeout,
	})

	verdict, err := pipeline.NewOrchestrator(profile.Threshold, phases).Run()
	if err != nil {
		slog.Error("invalid phase ordering", "error", err)
		os.Exit(exitPhaseOrderInvalid)
	}

	if !verdict.OK {
		slog.Error("some critical patching phases failed",
			"passed", len(verdict.Passed), "threshold", verdict.Threshold)
		os.Exit(exitPipelineFailed)
	}

	slog.Info("ungoogled-chromium patches applied successfully")
}

func loadProfile() *api.Profile {
	if profileFile == "" {
		profile, err := api.BuiltinProfile("ungoogled")
		if err != nil {
			slog.Error("failed to load built-in profile", "error", err)
			os.Exit(exitLoadProfileFailed)
		}
		return profile
	}

	profile, err := api.LoadProfile(profileFile)
	if err != nil {
		slog.Error("failed to load profile", "filename", profileFile, "error", err)
		os.Exit(exitLoadProfileFailed)
	}
	return profile
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Info("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}

func checkConfigDirectory() {
	if configDir == "" {
		slog.Error("-config-dir not set")
		os.Exit(exitConfigDirNotSpecified)
	}

	st, err := os.Stat(configDir)
	if err != nil {
		slog.Error("failed to check config directory", "directory", configDir, "error", err)
		os.Exit(exitConfigDirCheckFailed)
	}

	if !st.IsDir() {
		slog.Error("-config-dir is not a directory", "directory", configDir)
		os.Exit(exitConfigDirNotADirectory)
	}
}

func checkSourceDirectory() {
	if sourceDir == "" {
		slog.Error("-source-dir not set")
		os.Exit(exitSourceDirNotSpecified)
	}

	st, err := os.Stat(sourceDir)
	if err != nil {
		slog.Error("failed to check source directory", "directory", sourceDir, "error", err)
		os.Exit(exitSourceDirCheckFailed)
	}

	if !st.IsDir() {
		slog.Error("-source-dir is not a directory", "directory", sourceDir)
		os.Exit(exitSourceDirNotADirectory)
	}
}

func checkRequiredInputs() {
	for _, name := range requiredInputs {
		if _, err := os.Stat(filepath.Join(configDir, name)); err != nil {
			slog.Error("required specification input missing", "input", name, "directory", configDir)
			os.Exit(exitRequiredInputMissing)
		}
	}
}

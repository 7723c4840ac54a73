package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/crbuild/sourceprep/pkg/api"
	"github.com/crbuild/sourceprep/pkg/gnargs"
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
	exitInvalidTargetArch
	exitLoadProfileFailed
	exitPhaseOrderInvalid
)

var (
	configDir   string
	sourceDir   string
	targetArch  string
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
		"path to the Clang optimization patch directory")
	flag.StringVar(
		&sourceDir,
		"source-dir",
		"",
		"path to the Chromium source checkout")
	flag.StringVar(
		&targetArch,
		"target-arch",
		"avx512",
		"target architecture: "+strings.Join(gnargs.Archs, ", "))
	flag.StringVar(
		&profileFile,
		"profile",
		"",
		"pipeline profile YAML (default: built-in clang profile)")
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
	checkDirectory("-config-dir", configDir,
		exitConfigDirNotSpecified, exitConfigDirCheckFailed, exitConfigDirNotADirectory)
	checkDirectory("-source-dir", sourceDir,
		exitSourceDirNotSpecified, exitSourceDirCheckFailed, exitSourceDirNotADirectory)
	checkTargetArch()

	profile := loadProfile()

	phases := pipeline.BuildPhases(profile, pipeline.Config{
		ConfigDir: configDir,
		SourceDir: sourceDir,
		Arch:      targetArch,
		Timeout:   stepTimeout,
	})

	verdict, err := pipeline.NewOrchestrator(profile.Threshold, phases).Run()
	if err != nil {
		slog.Error("invalid phase ordering", "error", err)
		os.Exit(exitPhaseOrderInvalid)
	}

	if !verdict.OK {
		slog.Error("some critical optimization phases failed",
			"passed", len(verdict.Passed), "threshold", verdict.Threshold)
		os.Exit(exitPipelineFailed)
	}

	slog.Info("Clang optimizations applied successfully", "arch", targetArch)
}

func loadProfile() *api.Profile {
	if profileFile == "" {
		profile, err := api.BuiltinProfile("clang")
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

func checkDirectory(name, value string, exitNotSpecified, exitCheckFailed, exitNotADirectory int) {
	if value == "" {
		slog.Error(name + " not set")
		os.Exit(exitNotSpecified)
	}

	st, err := os.Stat(value)
	if err != nil {
		slog.Error("failed to check directory", "flag", name, "directory", value, "error", err)
		os.Exit(exitCheckFailed)
	}

	if !st.IsDir() {
		slog.Error("not a directory", "flag", name, "directory", value)
		os.Exit(exitNotADirectory)
	}
}

func checkTargetArch() {
	if !gnargs.ValidArch(targetArch) {
		slog.Error("unsupported target architecture", "arch", targetArch, "valid", strings.Join(gnargs.Archs, ", "))
		os.Exit(exitInvalidTargetArch)
	}
}

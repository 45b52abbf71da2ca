package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rshade/feedlist/internal/logging"
)

// EnvProjectDir overrides project directory discovery.
const EnvProjectDir = "FEEDLIST_PROJECT_DIR"

// ResolveProjectDir determines the project-local .feedlist directory path.
// It checks (in order):
//  1. flagValue
//  2. FEEDLIST_PROJECT_DIR env var
//  3. the nearest ancestor of startDir that contains a .feedlist directory
//
// Returns an absolute path, or "" if no project was found.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}
	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, configDirName)
		info, statErr := os.Stat(candidate)
		if statErr == nil && info.IsDir() {
			return candidate
		}
		if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			logger := logging.FromContext(ctx)
			logger.Warn().
				Str(logging.FieldComponent, "config").
				Err(statErr).
				Str("dir", dir).
				Msg("unexpected error during project discovery")
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadWithProject loads the global config from path, then shallow-merges the
// project-local config.yaml in projectDir on top. A broken overlay is logged
// and ignored.
func LoadWithProject(ctx context.Context, path, projectDir string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if projectDir == "" {
		return cfg, nil
	}

	overlayPath := ProjectConfigPath(projectDir)
	if _, err = os.Stat(overlayPath); err != nil {
		return cfg, nil
	}

	merged := *cfg
	if err = ShallowMergeYAML(&merged, overlayPath); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str(logging.FieldComponent, "config").
			Str(logging.FieldOperation, "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global config")
		return cfg, nil
	}
	merged.ApplyEnv()
	return &merged, nil
}

// ProjectConfigPath returns the config file inside a project .feedlist directory.
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, configFileName)
}

// toAbsProjectDir converts dir to an absolute path ending in .feedlist.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str(logging.FieldComponent, "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}
	if filepath.Base(abs) == configDirName {
		return abs
	}
	return filepath.Join(abs, configDirName)
}

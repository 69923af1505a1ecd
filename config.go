package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

const (
	defaultDistDir = "./dist/src"
	defaultSrcDir  = "./lib"
	defaultPattern = "*component.{js,ts}"
)

// Config holds everything a run needs. It is built once in the root command
// and handed to the walker and the inliner.
type Config struct {
	DistDir    string // absolute path of the compiled tree being rewritten
	SrcDir     string // absolute path of the tree assets are resolved against
	Pattern    string // doublestar pattern matched against file base names
	IgnoreFile string // optional gitignore-style file; empty disables it
	SassBinary string // Dart Sass executable; empty uses "sass" from PATH
	Verbose    bool
	DryRun     bool
}

// setDefaults registers the viper defaults for every config key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dist", defaultDistDir)
	v.SetDefault("src", defaultSrcDir)
	v.SetDefault("pattern", defaultPattern)
	v.SetDefault("ignore_file", "")
	v.SetDefault("sass_binary", "")
	v.SetDefault("verbose", false)
	v.SetDefault("dry_run", false)
}

// loadConfig merges viper state (defaults < config file < env < flags) with
// positional key=value arguments, which win over everything else.
func loadConfig(v *viper.Viper, args []string) (Config, []string, error) {
	cfg := Config{
		DistDir:    v.GetString("dist"),
		SrcDir:     v.GetString("src"),
		Pattern:    v.GetString("pattern"),
		IgnoreFile: v.GetString("ignore_file"),
		SassBinary: v.GetString("sass_binary"),
		Verbose:    v.GetBool("verbose"),
		DryRun:     v.GetBool("dry_run"),
	}

	unknown, err := applyArgs(&cfg, args)
	if err != nil {
		return Config{}, nil, err
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, nil, err
	}
	return cfg, unknown, nil
}

// applyArgs consumes arguments of the form key=value or bare flags in order,
// so a later duplicate overrides an earlier one. Arguments it does not
// recognize are returned to the caller.
func applyArgs(cfg *Config, args []string) ([]string, error) {
	var unknown []string
	for _, arg := range args {
		key, value, hasValue := strings.Cut(arg, "=")
		switch key {
		// cobra takes -v and -V as flags; these only arrive here after "--".
		case "-v", "-V":
			cfg.Verbose = true
		case "dist", "src":
			if !hasValue || value == "" {
				return nil, fmt.Errorf("argument %q requires a path, e.g. %s=<path>", key, key)
			}
			if key == "dist" {
				cfg.DistDir = value
			} else {
				cfg.SrcDir = value
			}
		default:
			unknown = append(unknown, arg)
		}
	}
	return unknown, nil
}

// finalize makes the roots absolute and validates the component pattern.
func (c *Config) finalize() error {
	var err error
	if c.DistDir, err = filepath.Abs(c.DistDir); err != nil {
		return fmt.Errorf("resolving dist directory: %w", err)
	}
	if c.SrcDir, err = filepath.Abs(c.SrcDir); err != nil {
		return fmt.Errorf("resolving src directory: %w", err)
	}
	if c.IgnoreFile != "" {
		if c.IgnoreFile, err = filepath.Abs(c.IgnoreFile); err != nil {
			return fmt.Errorf("resolving ignore file: %w", err)
		}
	}
	if c.Pattern == "" {
		c.Pattern = defaultPattern
	}
	if !doublestar.ValidatePattern(c.Pattern) {
		return fmt.Errorf("invalid component pattern %q", c.Pattern)
	}
	return nil
}

// srcDirFor maps a directory under the dist root to its mirror under the src
// root. Directories outside the dist root are returned unchanged.
func (c Config) srcDirFor(distDir string) string {
	rel, err := filepath.Rel(c.DistDir, distDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return distDir
	}
	return filepath.Join(c.SrcDir, rel)
}

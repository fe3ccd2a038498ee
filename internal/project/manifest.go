package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultCacheDir is used when the manifest does not set cache_dir.
const DefaultCacheDir = ".shaderpp-cache"

// ErrInvalidManifest marks a shaderpp.toml that cannot be used.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest is a decoded shaderpp.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML layout.
type Config struct {
	Version  string         `toml:"version"`
	Include  []string       `toml:"include"`
	Defines  []string       `toml:"defines"`
	OutDir   string         `toml:"out_dir"`
	CacheDir string         `toml:"cache_dir"`
	Shaders  []ShaderConfig `toml:"shader"`
}

// ShaderConfig is one [[shader]] entry.
type ShaderConfig struct {
	Input   string   `toml:"input"`
	Output  string   `toml:"output"`
	Version string   `toml:"version"`
	Defines []string `toml:"defines"`
	Include []string `toml:"include"`
}

// LoadManifest finds shaderpp.toml from startDir upwards and decodes it.
// ok is false when no manifest exists.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes and validates a manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w: failed to parse TOML: %w", path, ErrInvalidManifest, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: %w: unknown key %q", path, ErrInvalidManifest, undecoded[0].String())
	}
	if !meta.IsDefined("shader") || len(cfg.Shaders) == 0 {
		return Config{}, fmt.Errorf("%s: %w: missing [[shader]]", path, ErrInvalidManifest)
	}
	topVersion := meta.IsDefined("version") && strings.TrimSpace(cfg.Version) != ""
	for i, sh := range cfg.Shaders {
		if strings.TrimSpace(sh.Input) == "" {
			return Config{}, fmt.Errorf("%s: %w: [[shader]] #%d: missing input", path, ErrInvalidManifest, i+1)
		}
		if !topVersion && strings.TrimSpace(sh.Version) == "" {
			return Config{}, fmt.Errorf("%s: %w: [[shader]] %s: version not specified", path, ErrInvalidManifest, sh.Input)
		}
	}
	if _, err := ParseDefines(cfg.Defines); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// CacheDir returns the absolute cache directory of the project.
func (m *Manifest) CacheDir() string {
	dir := strings.TrimSpace(m.Config.CacheDir)
	if dir == "" {
		dir = DefaultCacheDir
	}
	return m.resolve(dir)
}

// Units expands every [[shader]] entry into a unit. Global include dirs
// and defines come first, then the entry's own, then the stage marker.
func (m *Manifest) Units() ([]Unit, error) {
	global, err := ParseDefines(m.Config.Defines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	units := make([]Unit, 0, len(m.Config.Shaders))
	outputs := make(map[string]string, len(m.Config.Shaders))
	for _, sh := range m.Config.Shaders {
		own, err := ParseDefines(sh.Defines)
		if err != nil {
			return nil, fmt.Errorf("%s: [[shader]] %s: %w", m.Path, sh.Input, err)
		}
		defines := append(slices.Clone(global), own...)

		dirs := make([]string, 0, len(m.Config.Include)+len(sh.Include))
		for _, d := range m.Config.Include {
			dirs = append(dirs, m.resolve(d))
		}
		for _, d := range sh.Include {
			dirs = append(dirs, m.resolve(d))
		}

		version := strings.TrimSpace(sh.Version)
		if version == "" {
			version = strings.TrimSpace(m.Config.Version)
		}

		input := m.resolve(sh.Input)
		output := m.outputFor(sh)
		if prev, ok := outputs[output]; ok {
			return nil, fmt.Errorf("%s: %w: [[shader]] %s and %s both write %s", m.Path, ErrInvalidManifest, prev, sh.Input, output)
		}
		outputs[output] = sh.Input
		units = append(units, NewUnit(input, output, version, defines, dirs))
	}
	return units, nil
}

func (m *Manifest) outputFor(sh ShaderConfig) string {
	if out := strings.TrimSpace(sh.Output); out != "" {
		return m.resolve(out)
	}
	outDir := strings.TrimSpace(m.Config.OutDir)
	if outDir == "" {
		outDir = "build"
	}
	return m.resolve(filepath.Join(outDir, filepath.Base(filepath.FromSlash(sh.Input))))
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}

package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"safec/internal/trace"
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing in safec.toml.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or blank.
	ErrPackageNameMissing = errors.New("missing [package].name")
	// ErrInvalidManifest wraps every other validation failure.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Manifest is a loaded safec.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of safec.toml.
//
//	[package]
//	name = "vec"
//
//	[build]
//	sources = ["src"]
//	output_dir = "build"
//	header = true
//	header_comment = "/* vec: generated */"
//	jobs = 4
//	max_depth = 32
//	cache = true
//
//	[trace]
//	level = "phase"
//	output = "trace.ndjson"
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Trace   TraceConfig   `toml:"trace"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	Sources       []string `toml:"sources"`
	OutputDir     string   `toml:"output_dir"`
	Header        bool     `toml:"header"`
	HeaderComment string   `toml:"header_comment"`
	Jobs          int      `toml:"jobs"`
	MaxDepth      int      `toml:"max_depth"`
	Cache         bool     `toml:"cache"`

	// HasHeaderComment is true when header_comment is present, even if empty;
	// an empty value disables the banner.
	HasHeaderComment bool `toml:"-"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// LoadManifest finds safec.toml above startDir and loads it.
// ok is false when there is no manifest.
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

// LoadConfig parses and validates one safec.toml file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: %w: unknown key %q", path, ErrInvalidManifest, undecoded[0].String())
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	cfg.Package.Name = strings.TrimSpace(cfg.Package.Name)
	if !meta.IsDefined("package", "name") || cfg.Package.Name == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	cfg.Build.HasHeaderComment = meta.IsDefined("build", "header_comment")
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w: %w", path, ErrInvalidManifest, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must be >= 0, got %d", c.Build.Jobs)
	}
	if c.Build.MaxDepth < 0 {
		return fmt.Errorf("[build].max_depth must be >= 0, got %d", c.Build.MaxDepth)
	}
	for _, src := range c.Build.Sources {
		if err := checkRelative("[build].sources", src); err != nil {
			return err
		}
	}
	if c.Build.OutputDir != "" {
		if err := checkRelative("[build].output_dir", c.Build.OutputDir); err != nil {
			return err
		}
	}
	if c.Trace.Level != "" {
		if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
			return fmt.Errorf("[trace].level: %w", err)
		}
	}
	return nil
}

func checkRelative(key, p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return fmt.Errorf("%s: empty path", key)
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("%s %q: must be relative", key, p)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s %q: escapes project root", key, p)
	}
	return nil
}

// SourcePaths returns [build].sources resolved against the project root,
// or the root itself when none are listed.
func (m *Manifest) SourcePaths() []string {
	if m == nil {
		return nil
	}
	if len(m.Config.Build.Sources) == 0 {
		return []string{m.Root}
	}
	out := make([]string, 0, len(m.Config.Build.Sources))
	for _, src := range m.Config.Build.Sources {
		out = append(out, m.resolve(src))
	}
	return out
}

// OutputDir returns [build].output_dir resolved against the project root, or "".
func (m *Manifest) OutputDir() string {
	if m == nil || m.Config.Build.OutputDir == "" {
		return ""
	}
	return m.resolve(m.Config.Build.OutputDir)
}

// TraceOutput returns [trace].output resolved against the project root.
// "-" and "" are returned unchanged.
func (m *Manifest) TraceOutput() string {
	if m == nil {
		return ""
	}
	out := strings.TrimSpace(m.Config.Trace.Output)
	if out == "" || out == "-" || filepath.IsAbs(out) {
		return out
	}
	return m.resolve(out)
}

func (m *Manifest) resolve(p string) string {
	return filepath.Join(m.Root, filepath.Clean(filepath.FromSlash(strings.TrimSpace(p))))
}

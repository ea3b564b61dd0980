package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/build"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/corpus"
	"github.com/amitnovick/compilation-ex3-testers/pkg/utils/logger"
)

const (
	defaultBuildCommand = "make"
	defaultArtifactName = "EX3"
	defaultBuildTimeout = 2 * time.Minute
	defaultTestTimeout  = 10 * time.Second
	defaultParallelism  = 1
)

// Duration parses yaml strings like "30s" or "2m" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// BuildConfig holds build invocation settings.
type BuildConfig struct {
	Command  string   `yaml:"command"`
	Artifact string   `yaml:"artifact"`
	Timeout  Duration `yaml:"timeout"`
}

// RunConfig holds test execution settings.
type RunConfig struct {
	WorkRoot    string   `yaml:"workRoot"`
	TestTimeout Duration `yaml:"testTimeout"`
	Parallelism int      `yaml:"parallelism"`
}

// SuiteConfig describes one test corpus location.
type SuiteConfig struct {
	Name        string `yaml:"name"`
	InputsDir   string `yaml:"inputsDir"`
	ExpectedDir string `yaml:"expectedDir"`
	Categorized bool   `yaml:"categorized"`
}

// AppConfig holds grader config.
type AppConfig struct {
	Logger logger.Config `yaml:"logger"`
	Build  BuildConfig   `yaml:"build"`
	Run    RunConfig     `yaml:"run"`
	Suites []SuiteConfig `yaml:"suites"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// loadAppConfig reads the YAML config when present and fills in defaults.
// The config file is optional: a missing file at the default path yields the
// built-in layout.
func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if _, err := os.Stat(path); err == nil {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config file failed: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Build.Command == "" {
		cfg.Build.Command = defaultBuildCommand
	}
	if cfg.Build.Artifact == "" {
		cfg.Build.Artifact = defaultArtifactName
	}
	if cfg.Build.Timeout == 0 {
		cfg.Build.Timeout = Duration(defaultBuildTimeout)
	}
	if cfg.Run.TestTimeout == 0 {
		cfg.Run.TestTimeout = Duration(defaultTestTimeout)
	}
	if cfg.Run.Parallelism <= 0 {
		cfg.Run.Parallelism = defaultParallelism
	}
	if len(cfg.Suites) == 0 {
		cfg.Suites = []SuiteConfig{
			{
				Name:        "official",
				InputsDir:   "tests/official/inputs",
				ExpectedDir: "tests/official/expected",
			},
			{
				Name:        "unofficial",
				InputsDir:   "tests/unofficial/inputs",
				ExpectedDir: "tests/unofficial/expected",
				Categorized: true,
			},
		}
	}
}

func (b BuildConfig) toInvoker() (build.Invoker, error) {
	argv, err := shlex.Split(b.Command)
	if err != nil {
		return build.Invoker{}, fmt.Errorf("parse build command failed: %w", err)
	}
	if len(argv) == 0 {
		return build.Invoker{}, fmt.Errorf("build command is empty")
	}
	return build.Invoker{
		Command:      argv,
		ArtifactName: b.Artifact,
		Timeout:      time.Duration(b.Timeout),
	}, nil
}

func (cfg *AppConfig) toSuites() []corpus.Suite {
	suites := make([]corpus.Suite, 0, len(cfg.Suites))
	for _, s := range cfg.Suites {
		suites = append(suites, corpus.Suite{
			Name:        s.Name,
			InputsDir:   s.InputsDir,
			ExpectedDir: s.ExpectedDir,
			Categorized: s.Categorized,
		})
	}
	return suites
}

package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pdfstyle/theme"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ThemeConfig struct {
		Name       string `yaml:"name"`
		Dir        string `yaml:"dir,omitempty" sanitize:"path_clean"`
		References string `yaml:"references" validate:"oneof=loose strict"`
	}

	TransformConfig struct {
		MergeAdjacentText bool `yaml:"merge_adjacent_text"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Theme     ThemeConfig     `yaml:"theme"`
		Transform TransformConfig `yaml:"transform"`
		Logging   LoggingConfig   `yaml:"logging"`
	}
)

// ReferencePolicy returns parsed value of references option.
func (conf *ThemeConfig) ReferencePolicy() theme.ReferencePolicy {
	p, err := theme.ParseReferencePolicy(conf.References)
	if err != nil {
		// validation makes sure this never happens
		return theme.ReferencesLoose
	}
	return p
}

// themeDirCheck makes sure theme directory, if specified, could be used.
func themeDirCheck(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok || len(cfg.Theme.Dir) == 0 {
		return
	}
	fi, err := os.Stat(cfg.Theme.Dir)
	if err != nil || !fi.IsDir() {
		sl.ReportError(cfg.Theme.Dir, "Dir", "Dir", "theme_dir", "")
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(themeDirCheck)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

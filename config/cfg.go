package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"csseng/css/mq"
	"csseng/fixed"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	MediaConfig struct {
		Type       string  `yaml:"type" validate:"required,oneof=all aural braille embossed handheld print projection screen speech tty tv"`
		Width      int     `yaml:"width" validate:"gte=0"`
		Height     int     `yaml:"height" validate:"gte=0"`
		FontSize   float64 `yaml:"font_size" validate:"gt=0"`
		LineHeight float64 `yaml:"line_height" validate:"gt=0"`
	}

	ParsingConfig struct {
		Quirks         bool   `yaml:"quirks"`
		MaxStyleWords  int    `yaml:"max_style_words" validate:"gte=0"`
		BaseURL        string `yaml:"base_url" validate:"omitempty,url"`
		UAStylesheet   string `yaml:"ua_stylesheet" sanitize:"assure_file_access"`
		UserStylesheet string `yaml:"user_stylesheet" sanitize:"assure_file_access"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Media     MediaConfig    `yaml:"media"`
		Parsing   ParsingConfig  `yaml:"parsing"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// Media returns the medium described by the configuration. Type was
// validated on load, unknown names yield an empty type matching nothing.
func (conf *MediaConfig) Media() *mq.Media {
	// font size is in points, line height is a multiple of it
	lh := fixed.FromFloat(conf.FontSize * conf.LineHeight).Mul(fixed.F96).Div(fixed.F72)
	return &mq.Media{
		Type:       mq.TypeByName(conf.Type),
		Width:      fixed.FromInt(conf.Width),
		Height:     fixed.FromInt(conf.Height),
		FontSize:   fixed.FromFloat(conf.FontSize),
		LineHeight: lh,
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
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
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

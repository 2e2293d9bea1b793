package core

import (
	"fmt"
	"io/ioutil"

	shellwords "github.com/mattn/go-shellwords"
	"gopkg.in/yaml.v2"
)

type Config struct {
	DBType string `yaml:"database_type"`
	DBPath string `yaml:"database_dsn"`

	LogLevel string `yaml:"log_level"`

	WipePasses   int    `yaml:"wipe_passes"`
	ShortTimeout int    `yaml:"short_timeout"`
	LongTimeout  int    `yaml:"long_timeout"`
	MetricsBind  string `yaml:"metrics_bind"`

	// per-tool argv overrides, e.g.
	//   tool_overrides:
	//     mkfs.ext4: "mkfs.ext4 -F -E lazy_itable_init=0"
	// parsed once here, executed only by the external invoker.
	ToolOverrides map[string]string `yaml:"tool_overrides"`
}

func ReadConfig(file string) (Config, error) {
	config := Config{
		DBType: "sqlite3",
		DBPath: "diskrim.db",

		LogLevel: "info",

		WipePasses:   DefaultWipePasses,
		ShortTimeout: 60,
		LongTimeout:  1800,
		MetricsBind:  "127.0.0.1:9560",
	}

	/* optionally read configuration from a file */
	if file != "" {
		b, err := ioutil.ReadFile(file)
		if err != nil {
			return config, err
		}

		if err = yaml.Unmarshal(b, &config); err != nil {
			return config, err
		}
	}

	/* validate configuration */
	if config.WipePasses <= 0 {
		return config, fmt.Errorf("wipe_passes value '%d' is invalid (must be greater than zero)", config.WipePasses)
	}
	if config.ShortTimeout <= 0 {
		return config, fmt.Errorf("short_timeout value '%d' is invalid (must be greater than zero)", config.ShortTimeout)
	}
	if config.LongTimeout <= 0 {
		return config, fmt.Errorf("long_timeout value '%d' is invalid (must be greater than zero)", config.LongTimeout)
	}
	if config.DBType != "sqlite3" && config.DBType != "mysql" {
		return config, fmt.Errorf("database_type '%s' is invalid (must be sqlite3 or mysql)", config.DBType)
	}

	return config, nil
}

// ParseOverrides splits the configured tool override strings into
// argv slices for the invoker.
func (config Config) ParseOverrides() (map[string][]string, error) {
	if len(config.ToolOverrides) == 0 {
		return nil, nil
	}

	out := make(map[string][]string, len(config.ToolOverrides))
	for tool, command := range config.ToolOverrides {
		argv, err := shellwords.Parse(command)
		if err != nil {
			return nil, fmt.Errorf("tool override for '%s' does not parse: %s", tool, err)
		}
		if len(argv) == 0 {
			return nil, fmt.Errorf("tool override for '%s' is empty", tool)
		}
		out[tool] = argv
	}
	return out, nil
}

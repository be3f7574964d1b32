package engine

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BotConfig is the bot's configuration surface: the bot's own name
// predicate, the brain file path, and behavior flags. It's assembled from
// (in increasing priority) defaults, a YAML config file, and a .env file's
// environment variables, matching the layered-config convention the rest
// of the retrieval pack's services use.
type BotConfig struct {
	Name       string `yaml:"name"`
	BrainPath  string `yaml:"brain_path"`
	Debug      bool   `yaml:"debug"`
	NoStd      bool   `yaml:"no_std"`
	Reset      bool   `yaml:"-"` // CLI-only, never persisted
}

// DefaultConfig returns the baseline (Name "Nameless", BrainPath
// "default.brn") a loaded config is merged on top of.
func DefaultConfig() BotConfig {
	return BotConfig{Name: "Nameless", BrainPath: "default.brn"}
}

// LoadConfig reads an optional YAML file at yamlPath and an optional
// dotenv file at envPath, applying env vars over YAML over the default.
// Either path may be "" to skip that source; a missing file at a given
// path is not an error, since every layer is optional.
func LoadConfig(yamlPath, envPath string) (BotConfig, error) {
	cfg := DefaultConfig()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, wrapErr(ErrKindConfig, "LoadConfig", err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, wrapErr(ErrKindConfig, "LoadConfig", err)
		}
	}

	if envPath != "" {
		if env, err := godotenv.Read(envPath); err == nil {
			applyEnvOverrides(&cfg, env)
		} else if !os.IsNotExist(err) {
			return cfg, wrapErr(ErrKindConfig, "LoadConfig", err)
		}
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *BotConfig, env map[string]string) {
	if v, ok := env["GOLEM_NAME"]; ok && v != "" {
		cfg.Name = v
	}
	if v, ok := env["GOLEM_BRAIN_PATH"]; ok && v != "" {
		cfg.BrainPath = v
	}
	if v, ok := env["GOLEM_DEBUG"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v, ok := env["GOLEM_NO_STD"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NoStd = b
		}
	}
}

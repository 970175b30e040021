package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToolConfig overrides how a build tool is invoked.
type ToolConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"` // prepended to every invocation
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of tools.yaml
type ConfigFile struct {
	Tools []ToolConfig `yaml:"tools" json:"tools"`
}

// DefaultTools are the tools the orchestrator may run, resolved through PATH.
var DefaultTools = []string{
	"cargo", "git", "meson", "ninja", "make", "sh", "pkg-config",
	"cc", "c++", "ar", "ranlib", "strip", "nm", "ld",
}

// LoadTools reads a configuration file (YAML or JSON) and returns a map of tool names to configs.
// A missing file yields an empty map.
func LoadTools(path string) (map[string]ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ToolConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	toolMap := make(map[string]ToolConfig)
	for _, tool := range cfg.Tools {
		if tool.Name == "" {
			continue
		}
		if tool.Command == "" {
			tool.Command = tool.Name
		}
		toolMap[tool.Name] = tool
	}

	return toolMap, nil
}

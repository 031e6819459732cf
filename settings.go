package main

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// resourceEnv lists the potential resource paths, separated like
// PATH. It takes precedence over the settings file.
const resourceEnv = "PBEOS_RESOURCE_PATHS"

// settingsFile is the ini-format settings file searched for in the
// home directory
const settingsFile = ".pbeos"

// Settings holds the machine-level configuration: the directories
// searched for potential files and tables
type Settings struct {
	ResourcePaths []string
}

// LoadSettings builds the settings from the environment and the
// settings file, environment first
func LoadSettings() *Settings {
	s := &Settings{}
	if env := os.Getenv(resourceEnv); env != "" {
		for _, p := range strings.Split(env, string(os.PathListSeparator)) {
			if p != "" {
				s.ResourcePaths = append(s.ResourcePaths, p)
			}
		}
	}
	home, err := os.UserHomeDir()
	if err == nil {
		s.mergeFile(filepath.Join(home, settingsFile))
	}
	return s
}

// mergeFile appends the resource paths found in an ini settings file.
// A missing file is not an error.
func (s *Settings) mergeFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return
	}
	raw := cfg.Section("DEFAULT").Key("RESOURCE_PATHS").String()
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			s.ResourcePaths = append(s.ResourcePaths, expandHome(p))
		}
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

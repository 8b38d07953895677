package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".bic"
	configFile string = "config.yml"
)

// Config defines all configuration options available to be set through the
// config file.
type Config struct {
	// Blacklist is the list of class name patterns (wildcard or regex)
	// excluded from parsed snapshots, in addition to the built-in set.
	Blacklist []string `yaml:"blacklist"`

	// NoDefaultBlacklist disables the built-in exclusion set, leaving only
	// the patterns listed under blacklist.
	NoDefaultBlacklist bool `yaml:"no-default-blacklist"`

	// PtrSize is the pointer width in bytes (4 or 8) used to canonicalize
	// raw address tokens in vtable dumps. 0 selects the host's width.
	PtrSize int `yaml:"ptr-size"`

	// PatchRelease makes the compatibility check treat additions and
	// reimplemented virtuals as violations too.
	PatchRelease bool `yaml:"patch-release"`

	// CacheSize is the number of parsed snapshots kept in memory when
	// checking several dumps in one invocation.
	CacheSize int `yaml:"cache-size"`
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() *Config {
	err := createConfigPath()
	if err != nil {
		fmt.Printf("Could not create config directory: %v.", err)
		return &Config{}
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Printf("Unable to get config file path: %v.", err)
		return &Config{}
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			fmt.Printf("Error creating default config file: %v", err)
			return &Config{}
		}
	}
	defer func() {
		err := f.Close()
		if err != nil {
			fmt.Printf("Closing config file failed: %v.", err)
		}
	}()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		fmt.Printf("Unable to read config data: %v.", err)
		return &Config{}
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		fmt.Printf("Unable to decode config file: %v.", err)
		return &Config{}
	}

	return &c
}

// SaveConfig will marshal and save the config struct to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	return err
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	return f, nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for the bic binary compatibility checker.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Class name patterns excluded from parsed snapshots, in addition to the
# built-in set. Patterns containing * or ? are wildcards, everything else is
# a regular expression; both must match the whole class name.
blacklist:
  # - "MyPrivateClass"
  # - "internal::*"

# Uncomment to drop the built-in exclusion set (std::*, libc structs, ...)
# and rely on the blacklist above only.
# no-default-blacklist: true

# Pointer width in bytes (4 or 8) used to canonicalize raw address tokens
# found in vtable dumps. If unset the host's width is used.
# ptr-size: 8

# Treat the comparison as a patch release: classes and reimplemented
# virtuals added since the baseline are violations too.
# patch-release: true

# Number of parsed snapshots kept in memory when checking several dumps in
# one invocation.
# cache-size: 16
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return path.Join(userHomeDir, configDir, file), nil
}

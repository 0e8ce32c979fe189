package cmd

import (
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Repo       string `json:"repo" yaml:"repo"`             // Default shared repository URL
	Branch     string `json:"branch" yaml:"branch"`         // Default branch
	CacheRoot  string `json:"cacheroot" yaml:"cacheroot"`   // Working copy cache directory
	Tag        string `json:"tag" yaml:"tag"`               // Default commit tag
	Credential string `json:"credential" yaml:"credential"` // Credentials to use for GCS object sources
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *CLIConfig) setRepoParams(flags *flagsT) {
	if flags.repo.Remote == "" {
		flags.repo.Remote = c.Repo
	}
	if flags.repo.Branch == "" {
		flags.repo.Branch = c.Branch
	}
	if flags.repo.CacheRoot == "" {
		flags.repo.CacheRoot = c.CacheRoot
	}
	if flags.update.Tag == "" {
		flags.update.Tag = c.Tag
	}
}

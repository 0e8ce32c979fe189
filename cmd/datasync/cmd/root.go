// Copyright © 2023 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datasync",
	Short: "Datasync moves files between workflow tasks through a shared repository",
	Long: `Datasync lets workflow tasks exchange files through a shared version-controlled repository.

A task publishes its outputs as one atomic commit, and downstream tasks fetch
exactly the files they need, or wait for them to change. Every host sharing the
same repository converges on the same content, with concurrent publishers
serialized through a repository lock and replayed on push conflicts.
`,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
	addRepoFlag(rootCmd)
	addBranchFlag(rootCmd)
	addCacheRootFlag(rootCmd)
	addLogLevelFlag(rootCmd)
	addLockTimeoutFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if os.Getenv("DATASYNC_CONFIG") != "" {
		// Use config file from the flag.
		viper.SetConfigFile(os.Getenv("DATASYNC_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.datasync")
		viper.AddConfigPath("/etc/datasync")
		viper.SetConfigName("datasync")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setRepoParams(&datasyncFlags)
	if config.Credential != "" {
		// Always pick the config file over a leftover environment variable
		_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", config.Credential)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bookmeta CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bookmeta/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the bookmeta CLI.
var rootCmd = &cobra.Command{
	Use:   "bookmeta",
	Short: "Resolve book metadata from the Goodreads catalog",
	Long: `bookmeta resolves a book's bibliographic metadata (title, contributors,
genres, series, publisher, ISBN) from the public catalog pages of
goodreads.com, which has no official structured API.

A book is identified by a catalog ID, an ISBN, a title, or a title plus
author. Resolved records can be printed, exported, or saved into a local
SQLite catalog for later lookup.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bookmeta.yaml or ~/.config/bookmeta/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bookmeta")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bookmeta"))
		}
	}

	viper.SetEnvPrefix("BOOKMETA")
	viper.AutomaticEnv()

	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("user_agent", "bookmeta/0.1")
	viper.SetDefault("max_retries", 5)
	viper.SetDefault("catalog_dir", "catalog")
	viper.SetDefault("max_results", 20)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// scraperConfig assembles the scraper settings from configuration.
func scraperConfig() types.ScraperConfig {
	return types.ScraperConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		BaseURL:    viper.GetString("base_url"),
		MaxRetries: viper.GetInt("max_retries"),
	}
}

// catalogConfig assembles the catalog store settings from configuration.
func catalogConfig() types.CatalogConfig {
	return types.CatalogConfig{
		CatalogDir: viper.GetString("catalog_dir"),
		MaxResults: viper.GetInt("max_results"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

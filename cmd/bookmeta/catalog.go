package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookmeta/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and export the local catalog of saved records",
	Long: `Catalog manages the SQLite database of records saved with
"bookmeta resolve --save": listing, showing a single record, full-text
search over titles and contributors, and YAML/JSON export.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved records, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *catalog.Store) error {
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			printEntries(os.Stdout, entries)
			return nil
		})
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <catalog-id>",
	Short: "Show one saved record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *catalog.Store) error {
			entry, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Printf("No saved record for %s.\n", args[0])
				return nil
			}
			printBook(os.Stdout, entry.CatalogID, &entry.BookMetadata)
			return nil
		})
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Full-text search over saved titles, contributors, and genres",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *catalog.Store) error {
			entries, err := store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEntries(os.Stdout, entries)
			return nil
		})
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML and JSON files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *catalog.Store) error {
			yamlPath, err := store.ExportYAML(cmd.Context())
			if err != nil {
				return err
			}
			jsonPath, err := store.ExportJSON(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("exported %s and %s\n", yamlPath, jsonPath)
			return nil
		})
	},
}

func withStore(fn func(*catalog.Store) error) error {
	store, err := catalog.Open(catalogConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}

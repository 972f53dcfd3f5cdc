package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bookmeta/internal/catalog"
	"github.com/pdiddy/bookmeta/pkg/scraper"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [identifier]",
	Short: "Resolve a book's metadata from the catalog site",
	Long: `Resolve looks up one book and prints its assembled metadata record.

The book is selected with --id, --isbn, or --title (optionally narrowed
with --author). A bare positional identifier is classified automatically:
an ISBN-shaped string resolves by ISBN, an all-digit string by catalog ID,
anything else by title search.

With --batch, a YAML file of queries is resolved sequentially and the
outcomes are written to a results file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("id", "", "resolve by catalog ID")
	resolveCmd.Flags().String("isbn", "", "resolve by ISBN")
	resolveCmd.Flags().String("title", "", "resolve by title search")
	resolveCmd.Flags().String("author", "", "narrow a title search by author")
	resolveCmd.Flags().String("batch", "", "YAML file of queries to resolve")
	resolveCmd.Flags().String("results", "batch-results.yaml", "output file for batch outcomes")
	resolveCmd.Flags().Bool("json", false, "output the record as JSON")
	resolveCmd.Flags().Bool("yaml", false, "output the record as YAML")
	resolveCmd.Flags().Bool("save", false, "save the record into the local catalog")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := scraperConfig()
	client := &http.Client{Timeout: cfg.Timeout}

	if batch, _ := cmd.Flags().GetString("batch"); batch != "" {
		return runBatch(cmd, batch, client)
	}

	q, err := queryFromArgs(cmd, args)
	if err != nil {
		return err
	}

	id, book, err := scraper.ExecuteWithID(cmd.Context(), client, q, cfg, os.Stderr)
	if err != nil {
		return err
	}
	if book == nil {
		fmt.Println("Book not found.")
		return nil
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		store, err := catalog.Open(catalogConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(cmd.Context(), id, book); err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", id)
	}

	switch {
	case flagBool(cmd, "json"):
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(book)
	case flagBool(cmd, "yaml"):
		data, err := yaml.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		fmt.Print(string(data))
		return nil
	default:
		printBook(os.Stdout, id, book)
		return nil
	}
}

// queryFromArgs builds the query from flags, or classifies a bare
// positional identifier when no strategy flag is set.
func queryFromArgs(cmd *cobra.Command, args []string) (scraper.Query, error) {
	id, _ := cmd.Flags().GetString("id")
	isbn, _ := cmd.Flags().GetString("isbn")
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")

	set := 0
	for _, f := range []string{id, isbn, title} {
		if f != "" {
			set++
		}
	}

	switch {
	case set > 1:
		return scraper.Query{}, fmt.Errorf("--id, --isbn, and --title are mutually exclusive")
	case author != "" && title == "":
		return scraper.Query{}, fmt.Errorf("--author requires --title")
	case set == 0 && len(args) == 1:
		return scraper.Classify(args[0])
	case set == 0:
		return scraper.Query{}, fmt.Errorf("provide an identifier, or one of --id, --isbn, --title")
	case id != "":
		return scraper.ByID(id)
	case isbn != "":
		return scraper.ByISBN(isbn)
	case author != "":
		return scraper.ByTitleAndAuthor(title, author)
	default:
		return scraper.ByTitle(title)
	}
}

func runBatch(cmd *cobra.Command, batchPath string, client *http.Client) error {
	queries, err := scraper.ReadBatchFile(batchPath)
	if err != nil {
		return err
	}

	outcomes, summary := scraper.ExecuteBatch(cmd.Context(), client, queries, scraperConfig(), os.Stdout)

	results, _ := cmd.Flags().GetString("results")
	if err := scraper.WriteBatchResults(results, outcomes); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "outcomes written to %s\n", results)

	if summary.HasFailures() {
		return fmt.Errorf("%d of %d queries failed", summary.Failed, summary.Total())
	}
	return nil
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

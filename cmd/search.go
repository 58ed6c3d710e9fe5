package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/ai"
	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/searcher"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search over your tasting notes",
	Long: `Uses AI to find notes that match the semantic meaning of your query.
Examples:
  brew-notes search "funky and fruity with berry notes"
  brew-notes search "classic comforting chocolate"

History commands:
  brew-notes search history
  brew-notes search clear "query string"
  brew-notes search clear all`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleSearch(args)
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", searcher.DefaultLimit, "Number of results")
	rootCmd.AddCommand(searchCmd)
}

func handleSearch(args []string) {
	// 1. Setup
	appCfg := mustAppConfig()
	database := mustDB(appCfg)
	defer database.Close()

	command := strings.ToLower(args[0])

	// 2. Commands
	if command == "history" && len(args) == 1 {
		entries, err := db.ListSearchHistory(database)
		if err != nil {
			log.Fatalf("Failed to list history: %v", err)
		}
		fmt.Println("📜 Search History (Cached Queries)")
		fmt.Println("------------------------------------")
		if len(entries) == 0 {
			fmt.Println("No history found.")
			return
		}
		for _, e := range entries {
			fmt.Printf("[%s] %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.QueryText)
		}
		return
	}

	if command == "clear" {
		if len(args) < 2 {
			log.Fatal("Usage: brew-notes search clear \"query text\" (or 'all')")
		}
		target := strings.ToLower(strings.TrimSpace(strings.Join(args[1:], " ")))
		var affected int64
		var err error

		if target == "all" {
			affected, err = db.ClearAllSearchHistory(database)
		} else {
			affected, err = db.ClearSearchHistory(database, target)
		}

		if err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Printf("🗑️ Done. Removed %d entry(s) from cache.\n", affected)
		return
	}

	// 3. Perform regular search
	ctx := context.Background()
	aiClient, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to init AI: %v", err)
	}
	defer aiClient.Close()

	query := strings.Join(args, " ")
	results, err := searcher.Perform(ctx, database, aiClient, query, searchLimit)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	// 4. Display
	fmt.Printf("\n🔍 Top matches for: \"%s\"\n\n", query)
	if len(results) == 0 {
		fmt.Println("No embedded notes yet. Run 'brew-notes embed' first.")
		return
	}
	for i, r := range results {
		n := r.Note
		origin := joinNonEmpty(" / ", n.Country.Name, n.Region.Name, n.Farm.Name)
		fmt.Printf("#%d [%.1f%% match] %s (%s)\n", i+1, r.Score*100, n.CoffeeName, origin)
		if n.Notes != "" {
			fmt.Printf("   %s\n", truncate(n.Notes, 150))
		}
		fmt.Println()
	}
}

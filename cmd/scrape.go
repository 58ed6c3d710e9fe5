package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/config"
	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/scraper"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a shop's current coffee list",
	Long: `Connects to the shop configured in CONFIG_PATH, scrapes current inventory, matches each
coffee's origin and process against the catalog, and updates the local database.
Saved offerings can seed notes with 'note add --from-url'.`,
	Run: func(cmd *cobra.Command, args []string) {
		runScrape()
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape() {
	// 1. Load Config
	appCfg := mustAppConfig()
	siteCfg, err := config.LoadSiteConfig(appCfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load site config: %v", err)
	}
	m := mustMatcher(appCfg)

	// 2. Connect to DB
	database := mustDB(appCfg)
	defer database.Close()

	// 3. Run Scraper
	items, err := scraper.Run(siteCfg, m)
	if err != nil {
		log.Fatalf("Scraping failed: %v", err)
	}
	log.Printf("Scraper found %d valid items.", len(items))

	if len(items) == 0 {
		log.Println("No items to save. Exiting.")
		return
	}

	// 4. Prep DB (Mark old items inactive) and save
	if err := db.MarkAllAsInactive(database); err != nil {
		log.Fatalf("Failed to mark inactive: %v", err)
	}
	count, err := db.SaveOfferings(database, items)
	if err != nil {
		log.Fatalf("Failed to save offerings: %v", err)
	}
	log.Printf("SUCCESS: Upserted %d records.", count)

	unmatched := 0
	for _, it := range items {
		if it.CountryID == "" {
			unmatched++
			fmt.Printf("  ? %s (origin %q)\n", it.Name, it.Origin)
		}
	}
	if unmatched > 0 {
		log.Printf("%d offerings have an origin the catalog does not know.", unmatched)
	}
}

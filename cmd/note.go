package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/db"
	"mspro-labs/brew-notes/internal/models"
	"mspro-labs/brew-notes/internal/prefill"
	"mspro-labs/brew-notes/internal/scraper"
)

var (
	noteLabel   models.LabelFields
	noteRatings models.Ratings
	noteFromURL string
	noteCountry string
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Add, list, show and delete tasting notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a tasting note",
	Long: `Adds a note to the journal. Label fields are matched against the catalog.
Examples:
  brew-notes note add --name "Kochere" --country 에티오피아 --region 예가체프 --process washed --overall 4
  brew-notes note add --from-url https://shop.example.com/coffee1 --overall 5 --notes "peach, jasmine"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runNoteAdd()
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the journal, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runNoteList()
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNoteShow(args[0])
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runNoteDelete(args[0])
	},
}

func init() {
	f := noteAddCmd.Flags()
	f.StringVar(&noteLabel.Name, "name", "", "Coffee name")
	f.StringVar(&noteLabel.Roaster, "roaster", "", "Roaster")
	f.StringVar(&noteLabel.Country, "country", "", "Country of origin")
	f.StringVar(&noteLabel.Region, "region", "", "Growing region")
	f.StringVar(&noteLabel.Farm, "farm", "", "Farm or washing station")
	f.StringVar(&noteLabel.Variety, "variety", "", "Variety")
	f.StringVar(&noteLabel.Process, "process", "", "Processing method")
	f.StringVar(&noteLabel.Roast, "roast", "", "Roast level")
	f.StringVar(&noteLabel.TastingNotes, "notes", "", "Tasting notes")
	f.StringVar(&noteFromURL, "from-url", "", "Start from a scraped shop offering")

	f.IntVar(&noteRatings.Aroma, "aroma", 0, "Aroma rating (0-5)")
	f.IntVar(&noteRatings.Flavor, "flavor", 0, "Flavor rating (0-5)")
	f.IntVar(&noteRatings.Aftertaste, "aftertaste", 0, "Aftertaste rating (0-5)")
	f.IntVar(&noteRatings.Acidity, "acidity", 0, "Acidity rating (0-5)")
	f.IntVar(&noteRatings.Body, "body", 0, "Body rating (0-5)")
	f.IntVar(&noteRatings.Sweetness, "sweetness", 0, "Sweetness rating (0-5)")
	f.IntVar(&noteRatings.Balance, "balance", 0, "Balance rating (0-5)")
	f.IntVar(&noteRatings.Overall, "overall", 0, "Overall rating (0-5)")

	noteListCmd.Flags().StringVar(&noteCountry, "country", "", "Only notes from this country id")

	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteShowCmd, noteDeleteCmd)
	rootCmd.AddCommand(noteCmd)
}

func runNoteAdd() {
	appCfg := mustAppConfig()
	m := mustMatcher(appCfg)
	database := mustDB(appCfg)
	defer database.Close()

	// 1. Collect label text (offering first, flags override)
	label := noteLabel
	if noteFromURL != "" {
		o, err := db.GetOffering(database, noteFromURL)
		if err != nil {
			log.Fatalf("Failed to load offering: %v", err)
		}
		label = mergeLabel(scraper.Label(o), noteLabel)
	}
	if label.Name == "" {
		log.Fatal("A coffee name is required (--name or --from-url)")
	}

	// 2. Match against the catalog
	form := prefill.FromLabel(m, label)
	printForm(os.Stdout, form)

	// 3. Save
	note := prefill.Note(m, label)
	note.Ratings = noteRatings
	note.OfferingURL = noteFromURL
	if err := db.SaveNote(database, &note); err != nil {
		log.Fatalf("Failed to save note: %v", err)
	}
	fmt.Println()
	printNote(os.Stdout, note)
}

// mergeLabel overlays the non-empty fields of override onto base.
func mergeLabel(base, override models.LabelFields) models.LabelFields {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.Name, override.Name)
	set(&base.Roaster, override.Roaster)
	set(&base.Country, override.Country)
	set(&base.Region, override.Region)
	set(&base.Farm, override.Farm)
	set(&base.Variety, override.Variety)
	set(&base.Process, override.Process)
	set(&base.Roast, override.Roast)
	set(&base.TastingNotes, override.TastingNotes)
	return base
}

func runNoteList() {
	appCfg := mustAppConfig()
	database := mustDB(appCfg)
	defer database.Close()

	notes, err := db.ListNotes(database, noteCountry)
	if err != nil {
		log.Fatalf("Failed to list notes: %v", err)
	}
	heading.Printf("📓 Journal (%d)\n", len(notes))
	fmt.Println("------------------------------------")
	for _, n := range notes {
		origin := joinNonEmpty(" / ", n.Country.Name, n.Region.Name, n.Farm.Name)
		fmt.Printf("#%-4d %s  %-30s %s  ★%d\n", n.ID, n.CreatedAt.Local().Format("2006-01-02"), truncate(n.CoffeeName, 30), origin, n.Ratings.Overall)
	}
}

func runNoteShow(arg string) {
	id := parseNoteID(arg)
	appCfg := mustAppConfig()
	database := mustDB(appCfg)
	defer database.Close()

	n, err := db.GetNote(database, id)
	if err != nil {
		log.Fatalf("Failed to load note: %v", err)
	}
	printNote(os.Stdout, n)
}

func runNoteDelete(arg string) {
	id := parseNoteID(arg)
	appCfg := mustAppConfig()
	database := mustDB(appCfg)
	defer database.Close()

	err := db.DeleteNote(database, id)
	if errors.Is(err, db.ErrNotFound) {
		log.Fatalf("No note with id %d", id)
	}
	if err != nil {
		log.Fatalf("Failed to delete note: %v", err)
	}
	fmt.Printf("🗑️ Deleted note #%d.\n", id)
}

func parseNoteID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		log.Fatalf("Invalid note id %q", arg)
	}
	return id
}

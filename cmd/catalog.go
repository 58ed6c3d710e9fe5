package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/catalog"
	"mspro-labs/brew-notes/internal/matcher"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [category] [scope]",
	Short: "List the reference catalog",
	Long: `Prints catalog entries. Without arguments, prints a summary of every category.
Examples:
  brew-notes catalog country
  brew-notes catalog region ethiopia
  brew-notes catalog farm 예가체프`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runCatalog(args)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(args []string) {
	cat := mustMatcher(mustAppConfig()).Catalog()

	if len(args) == 0 {
		heading.Println("📚 Catalog")
		fmt.Printf("  countries:    %d\n", len(cat.Countries()))
		fmt.Printf("  regions:      %d in %d countries\n", len(cat.AllRegions()), len(cat.RegionScopes()))
		fmt.Printf("  farms:        %d in %d regions\n", len(cat.AllFarms()), len(cat.FarmScopes()))
		fmt.Printf("  varieties:    %d\n", len(cat.Varieties()))
		fmt.Printf("  processes:    %d\n", len(cat.Processes()))
		fmt.Printf("  roast levels: %d\n", len(cat.RoastLevels()))
		return
	}

	c, err := matcher.ParseCategory(args[0])
	if err != nil {
		log.Fatalf("%v (want one of %v)", err, matcher.Categories)
	}
	scope := ""
	if len(args) == 2 {
		scope = args[1]
	}

	switch c {
	case matcher.Country:
		printEntities(cat.Countries())
	case matcher.Variety:
		printEntities(cat.Varieties())
	case matcher.Process:
		printEntities(cat.Processes())
	case matcher.Roast:
		printEntities(cat.RoastLevels())
	case matcher.Region:
		printScoped(cat.RegionScopes(), cat.Regions, scope)
	case matcher.Farm:
		printScoped(cat.FarmScopes(), cat.Farms, scope)
	}
}

func printEntities(list []catalog.Entity) {
	for _, e := range list {
		heading.Printf("%-20s", e.ID)
		fmt.Printf(" %s (%s)\n", e.Name, e.EnglishName)
		fmt.Printf("%-21s %s\n", "", strings.Join(e.Aliases, ", "))
	}
}

func printScoped(keys []string, children func(string) []string, scope string) {
	if scope != "" {
		keys = []string{scope}
	}
	for _, k := range keys {
		names := children(k)
		heading.Printf("%s", k)
		if len(names) == 0 {
			fmt.Println(": (none)")
			continue
		}
		fmt.Printf(": %s\n", strings.Join(names, ", "))
	}
}

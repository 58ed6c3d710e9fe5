package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mspro-labs/brew-notes/internal/matcher"
)

var matchScope string

var matchCmd = &cobra.Command{
	Use:   "match <category> <text>",
	Short: "Match free text against the catalog",
	Long: `Finds the best catalog entry for a piece of label text and prints its confidence.
Categories: country, region, farm, variety, process, roast.
Examples:
  brew-notes match country Ethipia
  brew-notes match region "Yirga Cheffe" --scope ethiopia
  brew-notes match farm 코체레 --scope 예가체프`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMatch(args)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchScope, "scope", "", "Country id (region) or region name (farm) to search within")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(args []string) {
	c, err := matcher.ParseCategory(args[0])
	if err != nil {
		log.Fatalf("%v (want one of %v)", err, matcher.Categories)
	}
	if matchScope != "" && !c.Hierarchical() {
		log.Printf("--scope is ignored for %s", c)
	}

	m := mustMatcher(mustAppConfig())
	input := strings.Join(args[1:], " ")
	printMatch(os.Stdout, c, input, m.Match(c, input, matchScope))
}

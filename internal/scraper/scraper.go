package scraper

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"mspro-labs/brew-notes/internal/config"
	"mspro-labs/brew-notes/internal/matcher"
	"mspro-labs/brew-notes/internal/models"
)

var logger = log.New(os.Stdout, "SCRAPER: ", log.LstdFlags|log.Lshortfile)

// Run orchestrates the entire scraping process: launch, fetch, and parse.
// Origin and processing cells are matched against the catalog.
func Run(cfg *config.SiteConfig, m *matcher.Matcher) ([]models.Offering, error) {
	logger.Println("Launching headless browser...")
	browser, err := launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.MustClose()

	logger.Printf("Navigating to: %s", cfg.CategoryURL)
	html, err := fetchHTML(browser, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML: %w", err)
	}

	logger.Println("Parsing HTML content...")
	items, err := parseHTML(html, cfg, m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return items, nil
}

func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

func fetchHTML(browser *rod.Browser, cfg *config.SiteConfig) (html string, err error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return "", err
	}
	defer page.Close()

	// rod's Must* helpers panic; turn that into an error for the caller.
	err = rod.Try(func() {
		p := page.Timeout(90 * time.Second)
		p.MustNavigate(cfg.CategoryURL)
		p.MustWaitStable()

		dismiss(p, "cookie button", cfg.Selectors.CookieButton)
		dismiss(p, "newsletter popup", cfg.Selectors.NewsletterPopup)

		if cfg.Selectors.ProductListWait != "" {
			logger.Printf("Waiting for product list: %s", cfg.Selectors.ProductListWait)
			p.MustWaitElementsMoreThan(cfg.Selectors.ProductListWait, 0)
		}
		html = p.MustHTML()
	})
	return html, err
}

// dismiss clicks sel if it shows up, without failing the scrape when it doesn't.
func dismiss(page *rod.Page, what, sel string) {
	if sel == "" {
		return
	}
	logger.Printf("Looking for %s: %s", what, sel)
	_ = rod.Try(func() {
		page.Timeout(5 * time.Second).MustElement(sel).MustClick()
		page.MustWaitStable()
	})
}

func parseHTML(html string, cfg *config.SiteConfig, m *matcher.Matcher) ([]models.Offering, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var items []models.Offering
	sel := cfg.Selectors

	doc.Find(sel.ProductRow).Each(func(_ int, s *goquery.Selection) {
		var item models.Offering

		// Basic Details
		link := s.Find(sel.Link).First()
		item.Name = strings.TrimSpace(link.Text())
		item.URL, _ = link.Attr("href")

		// Keyword Filter
		nameLower := strings.ToLower(item.Name)
		for _, kw := range cfg.DisallowedKeywords {
			if strings.Contains(nameLower, strings.ToLower(kw)) {
				logger.Printf("Skipping (keyword '%s'): %s", kw, item.Name)
				return
			}
		}

		item.Price = parsePrice(s.Find(sel.Price).First().Text())
		item.Origin = cellText(s, sel.Origin)
		item.Region = cellText(s, sel.Region)
		item.Processing = cellText(s, sel.Processing)

		// Description (handle quirk where it might be in the next row)
		if sel.Description != "" {
			if sel.DescriptionIsNextRow {
				item.Description = strings.TrimSpace(s.Next().Find(sel.Description).Text())
			} else {
				item.Description = strings.TrimSpace(s.Find(sel.Description).Text())
			}
		}

		// Simple Stock Check
		if sel.StockButton != "" && s.Find(sel.StockButton).Length() > 0 {
			item.StockStatus = "In Stock"
		} else if sel.StockComingSoon != "" && s.Find(sel.StockComingSoon).Length() > 0 {
			item.StockStatus = "Coming Soon"
		} else {
			item.StockStatus = "Out of Stock"
		}

		reconcile(&item, m)

		if item.Name != "" && item.URL != "" {
			items = append(items, item)
		}
	})

	return items, nil
}

// reconcile fills the catalog ids of an offering from its free-text cells.
// A region cell is replaced by the catalog spelling when it matches within
// the offering's country.
func reconcile(item *models.Offering, m *matcher.Matcher) {
	if r := m.MatchCountry(item.Origin); r != nil {
		item.CountryID = r.ID
	}
	if item.Region != "" && item.CountryID != "" {
		if r := m.MatchRegion(item.Region, item.CountryID); r != nil {
			item.Region = r.Name
		}
	}
	if r := m.MatchProcessingMethod(item.Processing); r != nil {
		item.ProcessID = r.ID
	}
}

// Label converts an offering into label fields for a new tasting note.
func Label(o models.Offering) models.LabelFields {
	return models.LabelFields{
		Name:    o.Name,
		Country: o.Origin,
		Region:  o.Region,
		Process: o.Processing,
	}
}

func cellText(s *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	return strings.TrimSpace(s.Find(sel).First().Text())
}

var rePrice = regexp.MustCompile(`[^\d\.]+`)

func parsePrice(priceStr string) float64 {
	val := rePrice.ReplaceAllString(priceStr, "")
	price, _ := strconv.ParseFloat(val, 64)
	return price
}

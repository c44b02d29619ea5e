package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"price-reconciler-service/internal/models"
)

// PageFetcher loads a rendered competitor page. Implemented by the scrape
// proxy client; stubbed in tests.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

// Competitor identifiers accepted by FetchPrice.
const (
	CompetitorDIY          = "diy"
	CompetitorHomeHardware = "homehardware"
)

var (
	diyPriceRe = regexp.MustCompile(`(?i)data-testid="product-price"[^>]*>([^<]+)</span>`)
	numericRe  = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)`)
	sellerCutRe = regexp.MustCompile(`Available online only.*$`)

	hhTitleRe = regexp.MustCompile(`(?is)<h1[^>]*class=["']productView-title["'][^>]*>(.*?)</h1>`)
	hhPriceRe = regexp.MustCompile(`(?is)<span[^>]*class=["']price price--withTax["'][^>]*>[^<£]*£([\d.,]+)`)
)

// CompetitorService scrapes competitor retail prices for a barcode. Every
// failure path degrades to an all-null quote carrying the search URL, so the
// editor can always offer a manual link.
type CompetitorService struct {
	fetcher PageFetcher
}

// NewCompetitorService creates a new competitor service
func NewCompetitorService(fetcher PageFetcher) *CompetitorService {
	return &CompetitorService{fetcher: fetcher}
}

// FetchPrice looks up a barcode on the named competitor site. An unknown
// competitor is the only error; scrape failures are not.
func (s *CompetitorService) FetchPrice(ctx context.Context, barcode, competitor string) (*models.CompetitorQuote, error) {
	switch competitor {
	case CompetitorDIY:
		return s.scrapeDIY(ctx, barcode), nil
	case CompetitorHomeHardware:
		return s.scrapeHomeHardware(ctx, barcode), nil
	default:
		return nil, fmt.Errorf("unknown competitor: %s", competitor)
	}
}

func (s *CompetitorService) scrapeDIY(ctx context.Context, barcode string) *models.CompetitorQuote {
	searchURL := "https://www.diy.com/search?term=" + url.QueryEscape(barcode)
	empty := &models.CompetitorQuote{CompetitorURL: searchURL}

	html, err := s.fetcher.FetchPage(ctx, searchURL)
	if err != nil {
		log.Printf("diy scrape failed for %s: %v", barcode, err)
		return empty
	}

	priceMatch := diyPriceRe.FindStringSubmatch(html)
	if priceMatch == nil {
		return empty
	}

	raw := strings.TrimSpace(strings.ReplaceAll(priceMatch[1], ",", ""))
	var price *float64
	if num := numericRe.FindStringSubmatch(raw); num != nil {
		if v, err := strconv.ParseFloat(num[1], 64); err == nil {
			price = &v
		}
	}

	// The seller badge distinguishes B&Q's own listing from marketplace
	// sellers whose prices are not comparable.
	sellerText := ""
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		sellerText = strings.TrimSpace(doc.Find(`[data-testid="seller"]`).Text())
		sellerText = strings.TrimSpace(sellerCutRe.ReplaceAllString(sellerText, ""))
	}

	title := fmt.Sprintf("DIY.com (%s)", sellerText)
	return &models.CompetitorQuote{
		Title:         &title,
		Price:         price,
		CompetitorURL: searchURL,
	}
}

var hhProductLinkPrefix = "https://homehardwaredirect.co.uk/"

func (s *CompetitorService) scrapeHomeHardware(ctx context.Context, barcode string) *models.CompetitorQuote {
	searchURL := "https://homehardwaredirect.co.uk/search.php?search_query=" + url.QueryEscape(barcode)
	empty := &models.CompetitorQuote{CompetitorURL: searchURL}

	searchHTML, err := s.fetcher.FetchPage(ctx, searchURL)
	if err != nil {
		log.Printf("homehardware search failed for %s: %v", barcode, err)
		return empty
	}

	productURL := firstProductLink(searchHTML)
	if productURL == "" {
		return empty
	}

	html, err := s.fetcher.FetchPage(ctx, productURL)
	if err != nil {
		log.Printf("homehardware product page failed for %s: %v", barcode, err)
		return empty
	}

	quote := &models.CompetitorQuote{CompetitorURL: productURL}
	if m := hhTitleRe.FindStringSubmatch(html); m != nil {
		title := strings.TrimSpace(m[1])
		quote.Title = &title
	}
	if m := hhPriceRe.FindStringSubmatch(html); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			quote.Price = &v
		}
	}
	return quote
}

// firstProductLink picks the first on-site link from the search results
// that is not another search page. Product URLs carry a query string.
func firstProductLink(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	link := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, hhProductLinkPrefix) {
			return true
		}
		if !strings.Contains(href, "?") || strings.Contains(href, "search.php") {
			return true
		}
		link = href
		return false
	})
	return link
}

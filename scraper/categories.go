package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-books-etl/models"
)

// DiscoverCategories enumerates the sidebar navigation of the landing page,
// in DOM order. A missing navigation container is a structural break and
// fails with DiscoveryError.
func DiscoverCategories(doc *goquery.Document, pageURL string) ([]models.Category, error) {
	container := doc.Find(".side_categories ul").First()
	if container.Length() == 0 {
		return nil, &DiscoveryError{URL: pageURL}
	}

	var categories []models.Category
	container.Find("li ul li a").Each(func(_ int, link *goquery.Selection) {
		name := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		categories = append(categories, models.Category{
			Name: name,
			URL:  resolveURL(pageURL, href),
		})
	})
	return categories, nil
}

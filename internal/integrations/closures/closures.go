package closures

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/Dan9191/payplan-service/internal/config"
	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// Client fetches operator-published closure dates (bank or processor
// outage days) from an XML feed. The dates join the custom skip list
// when a plan request opts in.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new closure feed client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.ClosureFeedURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// FetchClosures retrieves the feed and returns its closure dates sorted
// ascending. Entries with malformed dates are dropped.
func (c *Client) FetchClosures() ([]string, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	c.log.Debugf("Closure feed XML response: %s", string(body))

	return parseFeed(body, c.log)
}

// parseFeed extracts closure dates from a document shaped like
// <Closures><Closure date="2025-11-28" name="..."/></Closures>.
func parseFeed(rawBody []byte, log *logrus.Logger) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	elements := doc.FindElements("//Closures/Closure")
	if len(elements) == 0 {
		return nil, fmt.Errorf("no closure data found in XML")
	}

	dates := make([]string, 0, len(elements))
	for _, el := range elements {
		date := el.SelectAttrValue("date", "")
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			log.Warnf("Dropping closure entry with malformed date %q", date)
			continue
		}
		dates = append(dates, date)
	}

	sort.Strings(dates)
	return dates, nil
}

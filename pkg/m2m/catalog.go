package m2m

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// instrumentPattern extracts subsite/node/sensor tokens from the anchor
// list served by the allstreams page.
var instrumentPattern = regexp.MustCompile(`>(\w+/\w+/\w+\-\w+)<`)

// Catalog returns the instrument snapshot, building it on first use. The
// snapshot is immutable for the life of the client; concurrent readers
// need no locking. A client wanting a fresh snapshot is constructed anew.
func (c *Client) Catalog(ctx context.Context) (uframe.Catalog, error) {
	c.catalogOnce.Do(func() {
		body, err := c.doRequest(ctx, "allstreams", c.BuildURL(SensorPort, "sensor/allstreams"))
		if err != nil {
			c.catalogErr = err
			return
		}
		c.catalog = parseInstrumentList(body)
		c.logger.Debug("catalog built", zap.Int("instruments", len(c.catalog)))
	})
	return c.catalog, c.catalogErr
}

// parseInstrumentList scrapes instrument tokens out of the allstreams
// listing and returns them canonicalized, deduplicated and sorted.
func parseInstrumentList(body []byte) uframe.Catalog {
	matches := instrumentPattern.FindAllStringSubmatch(string(body), -1)
	seen := make(map[string]bool, len(matches))
	catalog := make(uframe.Catalog, 0, len(matches))
	for _, m := range matches {
		refDes := strings.ReplaceAll(m[1], "/", "-")
		if !seen[refDes] {
			seen[refDes] = true
			catalog = append(catalog, refDes)
		}
	}
	sort.Strings(catalog)
	return catalog
}

package mdm

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mdmdirector/devicesweep/log"
	"github.com/pkg/errors"
)

// listAll walks a Graph collection by following @odata.nextLink until the
// last page. noun is only used for progress logging.
func listAll[T any](ctx context.Context, c *GraphClient, noun string, query url.Values, segments ...string) ([]T, error) {
	endpoint, err := c.buildURL(query, segments...)
	if err != nil {
		return nil, errors.Wrap(err, "listAll")
	}

	var all []T
	pages := 0
	for endpoint != "" {
		var page listPage[T]
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, errors.Wrapf(err, "listAll: fetch %s page %d", noun, pages+1)
		}
		pages++
		all = append(all, page.Value...)
		if page.NextLink != "" {
			log.Infof("Fetched %d %s so far", len(all), noun)
		}
		endpoint = page.NextLink
	}

	return all, nil
}

package eilog

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gw2_isac/cache"
	"gw2_isac/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Client downloads parsed logs from dps.report.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	storage    *cache.Storage
}

// NewClient builds a client; storage may be nil to disable the on-disk cache.
func NewClient(baseURL string, httpClient *http.Client, storage *cache.Storage, rateLimit time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(rateLimit), 1),
		storage:    storage,
	}
}

func (c *Client) Fetch(ctx context.Context, permalink string) (*Log, error) {
	err := ValidatePermalink(permalink)
	if err != nil {
		return nil, err
	}

	var l Log
	if c.storage != nil && c.storage.Load(permalink, &l) {
		return &l, nil
	}

	err = share.Retry(
		ctx,
		func(ctx context.Context) error {
			l = Log{}
			return c.fetchInner(ctx, permalink, &l)
		},
	)
	if err != nil {
		return nil, err
	}

	if c.storage != nil {
		c.storage.Save(permalink, &l)
	}

	return &l, nil
}

func (c *Client) fetchInner(ctx context.Context, permalink string, l *Log) error {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + "/getJson?permalink=" + url.QueryEscape(permalink)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if !share.IsContextClosedError(err) {
			log.Printf("dps.report %s: %v", permalink, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &share.StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	err = jsoniter.NewDecoder(resp.Body).Decode(l)
	if err != nil && err != io.EOF {
		return errors.Wrap(err, permalink)
	}

	return nil
}

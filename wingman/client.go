package wingman

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gw2_isac/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var ErrUnknownBoss = errors.New("unknown wingman boss")

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, httpClient *http.Client, rateLimit time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(rateLimit), 1),
	}
}

// Bosses returns the ids of every boss wingman benchmarks.
func (c *Client) Bosses(ctx context.Context) ([]int64, error) {
	var resp map[string]jsoniter.RawMessage
	err := share.Retry(
		ctx,
		func(ctx context.Context) error {
			resp = nil
			return c.get(ctx, c.baseURL+"/bosses", &resp)
		},
	)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(resp))
	for k := range resp {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Boss fetches the current era benchmark of a boss, negative ids for challenge mode.
func (c *Client) Boss(ctx context.Context, id int64) (*BossBench, error) {
	q := url.Values{}
	q.Set("bossID", strconv.FormatInt(id, 10))
	q.Set("era", "this")

	var b BossBench
	err := share.Retry(
		ctx,
		func(ctx context.Context) error {
			b = BossBench{}
			return c.get(ctx, c.baseURL+"/boss?"+q.Encode(), &b)
		},
	)
	if err != nil {
		return nil, err
	}

	if got, ok := b.ID(); !ok || got != id {
		return nil, errors.Wrapf(ErrUnknownBoss, "%d", id)
	}
	return &b, nil
}

func (c *Client) get(ctx context.Context, u string, r interface{}) error {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &share.StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	err = jsoniter.NewDecoder(resp.Body).Decode(r)
	if err != nil {
		return errors.Wrap(err, u)
	}
	return nil
}

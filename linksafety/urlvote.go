package linksafety

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"

	"github.com/haven-social/guardian/util"
)

// URLVoteClient queries a multi-engine vote-based URL reputation service: the
// service fans the URL out to many scanning engines and reports how many voted
// malicious/suspicious/harmless.
type URLVoteClient struct {
	Client  *http.Client
	Host    string
	APIKey  string
	Limiter *rate.Limiter
}

type urlVoteResp struct {
	Status string `json:"status"` // "completed" or "queued"
	Stats  struct {
		Harmless   int `json:"harmless"`
		Suspicious int `json:"suspicious"`
		Malicious  int `json:"malicious"`
	} `json:"stats"`
}

func NewURLVoteClient(host, apiKey string) *URLVoteClient {
	return &URLVoteClient{
		Client:  util.ImpatientHTTPClient(),
		Host:    host,
		APIKey:  apiKey,
		Limiter: rate.NewLimiter(rate.Limit(4), 4),
	}
}

func (c *URLVoteClient) Name() string {
	return "urlvote"
}

func (c *URLVoteClient) Lookup(ctx context.Context, rawURL string) (*Lookup, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v1/urls/report?url=%s", c.Host, url.QueryEscape(rawURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "guardian/"+versioninfo.Short())

	start := time.Now()
	res, err := c.Client.Do(req)
	lookupDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		lookupCount.WithLabelValues(c.Name(), "error").Inc()
		return nil, fmt.Errorf("urlvote request failed: %w", err)
	}
	defer res.Body.Close()

	lookupCount.WithLabelValues(c.Name(), fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode == http.StatusNotFound {
		// never seen by the service; it queues analysis on first sight
		return &Lookup{Pending: true, Detail: "URL submitted for analysis"}, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("urlvote request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading urlvote resp body: %w", err)
	}
	var respObj urlVoteResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("parsing urlvote resp JSON: %w", err)
	}

	if respObj.Status == "queued" {
		return &Lookup{Pending: true, Detail: "analysis in progress"}, nil
	}

	out := &Lookup{
		Checked: true,
		Detail: fmt.Sprintf("engine votes: %d malicious, %d suspicious, %d harmless",
			respObj.Stats.Malicious, respObj.Stats.Suspicious, respObj.Stats.Harmless),
	}
	// a single engine crying wolf is suspicion, not confirmation
	switch {
	case respObj.Stats.Malicious >= 2:
		out.Malicious = true
	case respObj.Stats.Malicious == 1 || respObj.Stats.Suspicious >= 2:
		out.Suspicious = true
	}
	return out, nil
}

package linksafety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"

	"github.com/haven-social/guardian/util"
)

// ThreatListClient queries a curated threat-list lookup service (known malware
// and social-engineering URL lists). A hit is a confirmed-malicious signal; an
// empty match list only means "not on the list", never "clean".
type ThreatListClient struct {
	Client *http.Client
	Host   string
	APIKey string
}

type threatListReq struct {
	URL string `json:"url"`
}

type threatListResp struct {
	Matches []struct {
		ThreatType   string `json:"threatType"`
		PlatformType string `json:"platformType"`
	} `json:"matches"`
}

var confirmedThreatTypes = map[string]bool{
	"MALWARE":            true,
	"SOCIAL_ENGINEERING": true,
	"UNWANTED_SOFTWARE":  true,
}

func NewThreatListClient(host, apiKey string) *ThreatListClient {
	return &ThreatListClient{
		Client: util.ImpatientHTTPClient(),
		Host:   host,
		APIKey: apiKey,
	}
}

func (c *ThreatListClient) Name() string {
	return "threatlist"
}

func (c *ThreatListClient) Lookup(ctx context.Context, rawURL string) (*Lookup, error) {

	body, err := json.Marshal(threatListReq{URL: rawURL})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v4/threatMatches:find?key=%s", c.Host, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "guardian/"+versioninfo.Short())

	start := time.Now()
	res, err := c.Client.Do(req)
	lookupDuration.WithLabelValues(c.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		lookupCount.WithLabelValues(c.Name(), "error").Inc()
		return nil, fmt.Errorf("threatlist request failed: %w", err)
	}
	defer res.Body.Close()

	lookupCount.WithLabelValues(c.Name(), fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("threatlist request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading threatlist resp body: %w", err)
	}
	var respObj threatListResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("parsing threatlist resp JSON: %w", err)
	}

	out := &Lookup{Checked: true}
	var types []string
	for _, m := range respObj.Matches {
		types = append(types, m.ThreatType)
		if confirmedThreatTypes[m.ThreatType] {
			out.Malicious = true
		} else {
			out.Suspicious = true
		}
	}
	if len(types) > 0 {
		out.Detail = "threat list match: " + strings.Join(util.DedupeStrings(types), ", ")
	}
	return out, nil
}

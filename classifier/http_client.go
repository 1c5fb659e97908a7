package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"

	"github.com/haven-social/guardian/util"
)

// HTTPClient talks to a hosted content-safety classification service. Text is
// analyzed via a JSON endpoint; images via a multipart upload.
type HTTPClient struct {
	Client   *http.Client
	Host     string
	APIToken string
}

var _ Client = (*HTTPClient)(nil)

type analyzeTextReq struct {
	Text string `json:"text"`
}

type analyzeResp struct {
	CategoriesAnalysis []struct {
		Category string `json:"category"`
		Severity int    `json:"severity"`
	} `json:"categoriesAnalysis"`
}

func NewHTTPClient(host, apiToken string) *HTTPClient {
	return &HTTPClient{
		Client:   util.RobustHTTPClient(),
		Host:     host,
		APIToken: apiToken,
	}
}

func (c *HTTPClient) ClassifyText(ctx context.Context, text string) ([]Category, error) {

	body, err := json.Marshal(analyzeTextReq{Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/contentsafety/text:analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "text")
}

func (c *HTTPClient) ClassifyImage(ctx context.Context, data []byte) ([]Category, error) {

	slog.Debug("sending image to classifier", "size", len(data))

	// generic HTTP form file upload, then parse the response JSON
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("media", "upload")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/contentsafety/image:analyze", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, "image")
}

func (c *HTTPClient) do(req *http.Request, kind string) ([]Category, error) {

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIToken))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "guardian/"+versioninfo.Short())

	start := time.Now()
	defer func() {
		classifyDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	res, err := c.Client.Do(req)
	if err != nil {
		classifyCount.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer res.Body.Close()

	classifyCount.WithLabelValues(kind, fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier request failed statusCode=%d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading classifier resp body: %w", err)
	}
	var respObj analyzeResp
	if err := json.Unmarshal(respBytes, &respObj); err != nil {
		return nil, fmt.Errorf("parsing classifier resp JSON: %w", err)
	}

	out := make([]Category, 0, len(respObj.CategoriesAnalysis))
	for _, ca := range respObj.CategoriesAnalysis {
		out = append(out, Category{Name: ca.Category, Severity: ca.Severity})
	}
	return out, nil
}

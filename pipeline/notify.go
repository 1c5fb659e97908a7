package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Notifier tells a content author their content was blocked. Implementations
// receive only the category-level reason code, never the matched term or
// signature, so a notification can not teach evasion.
type Notifier interface {
	SendBlocked(ctx context.Context, c Content, reason string) error
}

// human-readable category descriptions for notifications
var reasonText = map[string]string{
	ReasonLexiconMatch:   "it contains language that is not allowed here",
	ReasonAttackDetected: "it matches known attack patterns",
	ReasonUnsafeLink:     "it contains a link flagged as unsafe",
	ReasonAIViolation:    "it was classified as violating community guidelines",
}

type SlackNotifier struct {
	SlackWebhookURL string
}

var _ Notifier = (*SlackNotifier)(nil)

func (n *SlackNotifier) SendBlocked(ctx context.Context, c Content, reason string) error {
	why, ok := reasonText[reason]
	if !ok {
		why = "it violates community guidelines"
	}
	msg := "🚫 Content Blocked 🚫\n"
	msg += fmt.Sprintf("`%s` / `%s`\n", c.AuthorID, c.Workflow)
	msg += fmt.Sprintf("Your content was blocked because %s.\n", why)
	if c.AuthorContact != "" {
		msg += fmt.Sprintf("Contact: `%s`\n", c.AuthorContact)
	}
	return n.sendSlackMsg(ctx, msg)
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := http.DefaultClient
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

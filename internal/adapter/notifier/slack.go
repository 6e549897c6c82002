package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// SlackNotifier announces created cases in a Slack channel. It is meant for
// analyst visibility, not delivery guarantees: a dropped message is
// recoverable from the case store.
type SlackNotifier struct {
	botToken    string
	channel     string
	mentionTeam string
	httpClient  *http.Client
}

func NewSlackNotifier(botToken, channel, mentionTeam string) *SlackNotifier {
	return &SlackNotifier{
		botToken:    botToken,
		channel:     channel,
		mentionTeam: mentionTeam,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyCaseCreated posts a formatted case summary to the channel.
func (s *SlackNotifier) NotifyCaseCreated(ctx context.Context, caseID string, c domain.Case) error {
	payload := slackMessage{
		Channel: s.channel,
		Blocks:  s.buildCaseBlocks(caseID, c),
		Text:    fmt.Sprintf("New case: %s", c.Name),
	}
	return s.sendMessage(ctx, payload)
}

func (s *SlackNotifier) buildCaseBlocks(caseID string, c domain.Case) []slackBlock {
	severityEmoji := map[domain.Severity]string{
		domain.SeverityHigh:   "🔴",
		domain.SeverityMedium: "🟡",
		domain.SeverityLow:    "🟢",
	}
	emoji := severityEmoji[c.Severity]
	if emoji == "" {
		emoji = "⚠️"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{
				Type: "plain_text",
				Text: fmt.Sprintf("%s New Security Case", emoji),
			},
		},
		{
			Type: "section",
			Text: &slackText{
				Type: "mrkdwn",
				Text: c.Name,
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Case ID*\n%s", caseID)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Severity*\n%s", c.Severity)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Source*\n%s", c.SourceIdentifier)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Asset*\n%s", c.AssetName)},
			},
		},
	}

	if s.mentionTeam != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("cc: %s", s.mentionTeam),
			},
		})
	}

	return blocks
}

func (s *SlackNotifier) sendMessage(ctx context.Context, msg slackMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://slack.com/api/chat.postMessage", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.botToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	return nil
}

// Slack API structures

type slackMessage struct {
	Channel string       `json:"channel"`
	Blocks  []slackBlock `json:"blocks"`
	Text    string       `json:"text"` // Fallback text
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

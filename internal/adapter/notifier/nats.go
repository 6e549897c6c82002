package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// NATSNotifier publishes a message for every case created downstream, so
// other systems can react without polling the case store.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

type caseCreatedEvent struct {
	CaseID           string `json:"case_id"`
	Name             string `json:"name"`
	Severity         string `json:"severity"`
	SourceIdentifier string `json:"source_identifier"`
	AssetName        string `json:"asset_name"`
	CreatedAt        string `json:"created_at"`
}

// NotifyCaseCreated publishes a case-created event. Fire and forget: a
// failed publish is reported but never blocks ingestion.
func (n *NATSNotifier) NotifyCaseCreated(_ context.Context, caseID string, c domain.Case) error {
	payload, err := json.Marshal(caseCreatedEvent{
		CaseID:           caseID,
		Name:             c.Name,
		Severity:         string(c.Severity),
		SourceIdentifier: c.SourceIdentifier,
		AssetName:        c.AssetName,
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode case event: %w", err)
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("failed to publish case event: %w", err)
	}
	return nil
}

func (n *NATSNotifier) Close() {
	n.conn.Close()
}

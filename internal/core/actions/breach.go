package actions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// PostComment posts a comment on a model breach.
type PostComment struct {
	API API
}

func (a *PostComment) Name() string { return "post_comment" }

func (a *PostComment) Run(ctx context.Context, params Params) (any, error) {
	breachID, err := params.Int("model_breach_id")
	if err != nil {
		return nil, err
	}
	message, err := params.String("message")
	if err != nil {
		return nil, err
	}

	result, err := a.API.PostBreachComment(ctx, breachID, message)
	if err != nil {
		return nil, fmt.Errorf("failed posting comment to model breach: %w", err)
	}
	return result, nil
}

// AcknowledgeBreach acknowledges a model breach.
type AcknowledgeBreach struct {
	API API
}

func (a *AcknowledgeBreach) Name() string { return "acknowledge_breach" }

func (a *AcknowledgeBreach) Run(ctx context.Context, params Params) (any, error) {
	breachID, err := params.Int("model_breach_id")
	if err != nil {
		return nil, err
	}

	result, err := a.API.AcknowledgeBreach(ctx, breachID)
	if err != nil {
		return nil, fmt.Errorf("failed acknowledge action to model breach: %w", err)
	}
	return result, nil
}

// UnacknowledgeBreach reopens an acknowledged model breach.
type UnacknowledgeBreach struct {
	API API
}

func (a *UnacknowledgeBreach) Name() string { return "unacknowledge_breach" }

func (a *UnacknowledgeBreach) Run(ctx context.Context, params Params) (any, error) {
	breachID, err := params.Int("model_breach_id")
	if err != nil {
		return nil, err
	}

	result, err := a.API.UnacknowledgeBreach(ctx, breachID)
	if err != nil {
		return nil, fmt.Errorf("failed unacknowledge action to model breach: %w", err)
	}
	return result, nil
}

// GetBreachComments lists the comments on a model breach with a compact
// per-comment summary.
type GetBreachComments struct {
	API API
}

func (a *GetBreachComments) Name() string { return "get_breach_comments" }

func (a *GetBreachComments) Run(ctx context.Context, params Params) (any, error) {
	breachID, err := params.Int("model_breach_id")
	if err != nil {
		return nil, err
	}

	comments, err := a.API.BreachComments(ctx, breachID)
	if err != nil {
		return nil, fmt.Errorf("failed getting model breach comments: %w", err)
	}

	summary := make(map[string]any, len(comments))
	for i, comment := range comments {
		summary[strconv.Itoa(i)] = map[string]any{
			"username": domain.AsString(comment.GetOr("", "username")),
			"comment":  domain.AsString(comment.GetOr("", "message")),
			"time":     formatEpochMillis(comment.GetOr(0, "time")),
		}
	}

	return map[string]any{
		"comments": comments,
		"summary":  summary,
	}, nil
}

// GetBreachConnections lists the connection records behind a model breach.
// Only entries whose action is "connection" are returned; other detail
// rows carry no endpoint data.
type GetBreachConnections struct {
	API API
}

func (a *GetBreachConnections) Name() string { return "get_breach_connections" }

func (a *GetBreachConnections) Run(ctx context.Context, params Params) (any, error) {
	breachID, err := params.Int("model_breach_id")
	if err != nil {
		return nil, err
	}

	connections, err := a.API.BreachConnections(ctx, breachID)
	if err != nil {
		return nil, fmt.Errorf("failed getting model breach connections: %w", err)
	}

	var entries []map[string]string
	for _, conn := range connections {
		if domain.AsString(conn.GetOr("", "action")) != "connection" {
			continue
		}
		entries = append(entries, connectionData(conn))
	}
	return entries, nil
}

func connectionData(conn domain.Record) map[string]string {
	protocol := domain.AsString(conn.Get("protocol"))
	applicationProtocol := domain.AsString(conn.Get("applicationprotocol"))

	return map[string]string{
		"time":          domain.AsString(conn.GetOr("", "time")),
		"proto":         protocol + " - " + applicationProtocol,
		"dest_hostname": domain.AsString(conn.Get("destinationDevice", "hostname")),
		"dest_ip":       domain.AsString(conn.Get("destinationDevice", "ip")),
		"src_hostname":  domain.AsString(conn.Get("sourceDevice", "hostname")),
		"src_ip":        domain.AsString(conn.Get("sourceDevice", "ip")),
		"src_port":      domain.AsString(conn.Get("sourcePort")),
		"dest_port":     domain.AsString(conn.Get("destinationPort")),
	}
}

package appliance

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// Appliance API endpoints.
const (
	modelBreachEndpoint       = "/modelbreaches"
	aiAnalystEndpoint         = "/aianalyst/incidentevents"
	devicesEndpoint           = "/devices"
	deviceSummaryEndpoint     = "/devicesummary"
	tagEntitiesEndpoint       = "/tags/entities"
	breachCommentEndpoint     = "/mbcomments"
	breachConnectionsEndpoint = "/details"
	connectivityEndpoint      = "/summarystatistics"

	acknowledgeSuffix   = "/acknowledge"
	unacknowledgeSuffix = "/unacknowledge"
	commentSuffix       = "/comments"
)

// Client exposes the appliance API as typed operations. Every call is
// signed by the transport and interpreted by Classify.
type Client struct {
	transport *Transport

	// Debug logs the response trail for successful calls too. Failed
	// calls always log their trail.
	Debug bool
}

func NewClient(baseURL, publicToken, privateToken string, skipTLSVerify bool) *Client {
	return &Client{
		transport: NewTransport(baseURL, publicToken, privateToken, skipTLSVerify),
	}
}

// BaseURL returns the configured appliance URL, used to build deep links
// into the appliance UI.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL()
}

// TestConnectivity probes the summary statistics endpoint.
func (c *Client) TestConnectivity(ctx context.Context) (domain.Record, error) {
	parsed, err := c.get(ctx, connectivityEndpoint, Params{{"responsedata", "subnets"}})
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// ModelBreaches lists model breaches in [from, to).
func (c *Client) ModelBreaches(ctx context.Context, from, to time.Time) ([]domain.Record, error) {
	params := Params{
		{"from", formatRange(from)},
		{"to", formatRange(to)},
		{"includeacknowledged", "true"},
	}
	parsed, err := c.get(ctx, modelBreachEndpoint, params)
	if err != nil {
		return nil, err
	}
	return asRecords(parsed), nil
}

// AIAnalystEvents lists incident events in [from, to). The endpoint takes
// millisecond epochs where the breach listing takes formatted timestamps.
func (c *Client) AIAnalystEvents(ctx context.Context, from, to time.Time) ([]domain.Record, error) {
	params := Params{
		{"starttime", strconv.FormatInt(from.UnixMilli(), 10)},
		{"endtime", strconv.FormatInt(to.UnixMilli(), 10)},
		{"includeacknowledged", "true"},
	}
	parsed, err := c.get(ctx, aiAnalystEndpoint, params)
	if err != nil {
		return nil, err
	}
	return asRecords(parsed), nil
}

// Device looks up appliance data about a device.
func (c *Client) Device(ctx context.Context, deviceID int) (domain.Record, error) {
	parsed, err := c.get(ctx, devicesEndpoint, didParams(deviceID))
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// DeviceSummary fetches the summary view of a device.
func (c *Client) DeviceSummary(ctx context.Context, deviceID int) (domain.Record, error) {
	parsed, err := c.get(ctx, deviceSummaryEndpoint, didParams(deviceID))
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// DeviceTags lists the tags applied to a device.
func (c *Client) DeviceTags(ctx context.Context, deviceID int) ([]domain.Record, error) {
	parsed, err := c.get(ctx, tagEntitiesEndpoint, didParams(deviceID))
	if err != nil {
		return nil, err
	}
	return asRecords(parsed), nil
}

// TaggedDevices lists the devices carrying a tag, with full device details.
func (c *Client) TaggedDevices(ctx context.Context, tag string) (domain.Record, error) {
	params := Params{{"tag", tag}, {"fulldevicedetails", "true"}}
	parsed, err := c.get(ctx, tagEntitiesEndpoint, params)
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// PostTag tags a device for duration seconds, or indefinitely when
// duration is zero.
func (c *Client) PostTag(ctx context.Context, deviceID int, tag string, duration int) (domain.Record, error) {
	params := Params{
		{"did", strconv.Itoa(deviceID)},
		{"tag", tag},
	}
	if duration > 0 {
		params = append(params, Param{"duration", strconv.Itoa(duration)})
	}
	parsed, err := c.postForm(ctx, tagEntitiesEndpoint, params)
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// BreachComments lists the comments on a model breach.
func (c *Client) BreachComments(ctx context.Context, breachID int) ([]domain.Record, error) {
	parsed, err := c.get(ctx, breachCommentEndpoint, pbidParams(breachID))
	if err != nil {
		return nil, err
	}
	return asRecords(parsed), nil
}

// PostBreachComment posts a comment on a model breach.
func (c *Client) PostBreachComment(ctx context.Context, breachID int, message string) (domain.Record, error) {
	path := modelBreachEndpoint + "/" + strconv.Itoa(breachID) + commentSuffix
	parsed, err := c.postJSON(ctx, path, map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// AcknowledgeBreach acknowledges a model breach.
func (c *Client) AcknowledgeBreach(ctx context.Context, breachID int) (domain.Record, error) {
	path := modelBreachEndpoint + "/" + strconv.Itoa(breachID) + acknowledgeSuffix
	parsed, err := c.postForm(ctx, path, Params{{"acknowledge", "true"}})
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// UnacknowledgeBreach reopens an acknowledged model breach.
func (c *Client) UnacknowledgeBreach(ctx context.Context, breachID int) (domain.Record, error) {
	path := modelBreachEndpoint + "/" + strconv.Itoa(breachID) + unacknowledgeSuffix
	parsed, err := c.postForm(ctx, path, Params{{"unacknowledge", "true"}})
	if err != nil {
		return nil, err
	}
	return asRecord(parsed), nil
}

// BreachConnections lists the connection detail records behind a breach.
func (c *Client) BreachConnections(ctx context.Context, breachID int) ([]domain.Record, error) {
	parsed, err := c.get(ctx, breachConnectionsEndpoint, pbidParams(breachID))
	if err != nil {
		return nil, err
	}
	return asRecords(parsed), nil
}

func (c *Client) get(ctx context.Context, path string, params Params) (any, error) {
	resp, err := c.transport.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return c.classify(path, resp)
}

func (c *Client) postForm(ctx context.Context, path string, params Params) (any, error) {
	resp, err := c.transport.PostForm(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return c.classify(path, resp)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (any, error) {
	resp, err := c.transport.PostJSON(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	return c.classify(path, resp)
}

func (c *Client) classify(path string, resp *http.Response) (any, error) {
	parsed, diag, err := Classify(resp)
	if diag != nil && (err != nil || c.Debug) {
		log.Printf("appliance %s: status=%d headers=%v body=%s", path, diag.StatusCode, diag.Headers, diag.Body)
	}
	return parsed, err
}

func didParams(deviceID int) Params {
	return Params{{"did", strconv.Itoa(deviceID)}}
}

func pbidParams(breachID int) Params {
	return Params{{"pbid", strconv.Itoa(breachID)}}
}

// formatRange renders a window boundary for the breach listing endpoint.
func formatRange(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05") + ".00Z"
}

func asRecord(v any) domain.Record {
	if m, ok := v.(map[string]any); ok {
		return domain.Record(m)
	}
	return domain.Record{}
}

func asRecords(v any) []domain.Record {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	records := make([]domain.Record, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			records = append(records, domain.Record(m))
		}
	}
	return records
}

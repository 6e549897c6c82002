package actions

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// API is the slice of the appliance client the actions need. Tests swap in
// a fake.
type API interface {
	TestConnectivity(ctx context.Context) (domain.Record, error)
	DeviceTags(ctx context.Context, deviceID int) ([]domain.Record, error)
	TaggedDevices(ctx context.Context, tag string) (domain.Record, error)
	PostTag(ctx context.Context, deviceID int, tag string, duration int) (domain.Record, error)
	BreachComments(ctx context.Context, breachID int) ([]domain.Record, error)
	PostBreachComment(ctx context.Context, breachID int, message string) (domain.Record, error)
	AcknowledgeBreach(ctx context.Context, breachID int) (domain.Record, error)
	UnacknowledgeBreach(ctx context.Context, breachID int) (domain.Record, error)
	BreachConnections(ctx context.Context, breachID int) ([]domain.Record, error)
	BaseURL() string
}

// DeviceSummaries resolves device summaries, usually through the LRU cache.
type DeviceSummaries interface {
	Summary(ctx context.Context, deviceID int) (domain.Record, error)
}

// Params are the string parameters supplied by the caller of an action.
type Params map[string]string

func (p Params) String(key string) (string, error) {
	value, ok := p[key]
	if !ok || value == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return value, nil
}

func (p Params) Int(key string) (int, error) {
	value, err := p.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parameter %q is not an integer: %w", key, err)
	}
	return n, nil
}

// OptionalInt returns 0 when the parameter is absent.
func (p Params) OptionalInt(key string) (int, error) {
	if _, ok := p[key]; !ok {
		return 0, nil
	}
	return p.Int(key)
}

// Handler executes one named connector action against the appliance.
type Handler interface {
	Name() string
	Run(ctx context.Context, params Params) (any, error)
}

// Registry maps action identifiers to handlers: a lookup table instead of
// a dispatch chain, so each handler stays independently testable.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		r.handlers[h.Name()] = h
	}
	return r
}

// DefaultRegistry wires every connector action against the given client.
func DefaultRegistry(api API, devices DeviceSummaries) *Registry {
	return NewRegistry(
		&TestConnectivity{API: api},
		&GetDeviceDescription{Devices: devices},
		&GetDeviceModelBreaches{Devices: devices, BaseURL: api.BaseURL()},
		&GetDeviceTags{API: api},
		&GetTaggedDevices{API: api},
		&PostTag{API: api},
		&PostComment{API: api},
		&AcknowledgeBreach{API: api},
		&UnacknowledgeBreach{API: api},
		&GetBreachComments{API: api},
		&GetBreachConnections{API: api},
	)
}

// Run dispatches a named action.
func (r *Registry) Run(ctx context.Context, name string, params Params) (any, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	return handler.Run(ctx, params)
}

// Names lists the registered action identifiers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatEpochMillis renders a millisecond epoch field for action summaries.
func formatEpochMillis(v any) string {
	ms := domain.AsInt64(v)
	return time.Unix(ms/1000, 0).UTC().Format("2006-01-02 15:04:05") + " UTC"
}

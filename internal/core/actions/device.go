package actions

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// GetDeviceDescription returns the summary view of a device.
type GetDeviceDescription struct {
	Devices DeviceSummaries
}

func (a *GetDeviceDescription) Name() string { return "get_device_description" }

func (a *GetDeviceDescription) Run(ctx context.Context, params Params) (any, error) {
	deviceID, err := params.Int("device_id")
	if err != nil {
		return nil, err
	}

	summary, err := a.Devices.Summary(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed retrieving device summary: %w", err)
	}
	return summary.GetOr(map[string]any{}, "data"), nil
}

// GetDeviceModelBreaches lists a device's model breaches, each annotated
// with its derived severity and a deep link into the appliance UI.
type GetDeviceModelBreaches struct {
	Devices DeviceSummaries
	BaseURL string
}

func (a *GetDeviceModelBreaches) Name() string { return "get_device_model_breaches" }

func (a *GetDeviceModelBreaches) Run(ctx context.Context, params Params) (any, error) {
	deviceID, err := params.Int("device_id")
	if err != nil {
		return nil, err
	}

	summary, err := a.Devices.Summary(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed retrieving device model breaches: %w", err)
	}

	raw, _ := summary.GetOr([]any{}, "data", "modelbreaches").([]any)

	breaches := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		breach := domain.Record(m)
		pbid := domain.AsString(breach.Get("pbid"))

		breaches = append(breaches, map[string]any{
			"breach":   m,
			"severity": domain.BreachSeverity(breach),
			"url":      fmt.Sprintf("%s/#modelbreach/%s", a.BaseURL, pbid),
		})
	}

	return breaches, nil
}

// GetDeviceTags lists the tags on a device.
type GetDeviceTags struct {
	API API
}

func (a *GetDeviceTags) Name() string { return "get_device_tags" }

func (a *GetDeviceTags) Run(ctx context.Context, params Params) (any, error) {
	deviceID, err := params.Int("device_id")
	if err != nil {
		return nil, err
	}

	tags, err := a.API.DeviceTags(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed retrieving tags for device: %w", err)
	}
	return tags, nil
}

// GetTaggedDevices lists the devices carrying a tag plus a compact
// per-device identity summary.
type GetTaggedDevices struct {
	API API
}

func (a *GetTaggedDevices) Name() string { return "get_tagged_devices" }

func (a *GetTaggedDevices) Run(ctx context.Context, params Params) (any, error) {
	tag, err := params.String("tag")
	if err != nil {
		return nil, err
	}

	tagged, err := a.API.TaggedDevices(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed retrieving devices for tag: %w", err)
	}

	devices, _ := tagged.GetOr([]any{}, "devices").([]any)
	summary := make(map[string]any, len(devices))
	for i, entry := range devices {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		device := domain.Record(m)
		summary[strconv.Itoa(i)] = map[string]any{
			"did":      device.GetOr(nil, "did"),
			"hostname": device.GetOr(nil, "hostname"),
			"ip":       device.GetOr(nil, "ip"),
			"mac":      device.GetOr(nil, "macaddress"),
			"label":    device.GetOr(nil, "devicelabel"),
		}
	}

	return map[string]any{
		"entities": tagged.GetOr([]any{}, "entities"),
		"summary":  summary,
	}, nil
}

// PostTag applies a tag to a device, optionally for a limited duration in
// seconds.
type PostTag struct {
	API API
}

func (a *PostTag) Name() string { return "post_tag" }

func (a *PostTag) Run(ctx context.Context, params Params) (any, error) {
	deviceID, err := params.Int("device_id")
	if err != nil {
		return nil, err
	}
	tag, err := params.String("tag")
	if err != nil {
		return nil, err
	}
	duration, err := params.OptionalInt("duration")
	if err != nil {
		return nil, err
	}

	result, err := a.API.PostTag(ctx, deviceID, tag, duration)
	if err != nil {
		return nil, fmt.Errorf("failed posting tag to device: %w", err)
	}
	return result, nil
}

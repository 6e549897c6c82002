package domain

import "testing"

func sampleRecord() Record {
	return Record{
		"pbid": float64(101),
		"device": map[string]any{
			"hostname": "finance-pc",
			"ip":       nil,
		},
		"model": map[string]any{
			"then": map[string]any{
				"category": "",
				"tags":     []any{"tag-a", "tag-b"},
			},
		},
	}
}

func TestGetWalksNestedStructures(t *testing.T) {
	r := sampleRecord()

	if got := r.Get("device", "hostname"); got != "finance-pc" {
		t.Errorf("Get(device, hostname) = %v", got)
	}
	if got := r.Get("model", "then", "tags", 1); got != "tag-b" {
		t.Errorf("Get(model, then, tags, 1) = %v", got)
	}
}

func TestGetDefaultsOnMissingNilAndEmpty(t *testing.T) {
	r := sampleRecord()

	cases := []struct {
		name   string
		fields []any
	}{
		{"missing key", []any{"device", "mac"}},
		{"nil value", []any{"device", "ip"}},
		{"empty string", []any{"model", "then", "category"}},
		{"index out of range", []any{"model", "then", "tags", 5}},
		{"index into map", []any{"device", 0}},
		{"key into slice", []any{"model", "then", "tags", "x"}},
	}
	for _, tc := range cases {
		if got := r.Get(tc.fields...); got != Unknown {
			t.Errorf("%s: Get = %v, want %q", tc.name, got, Unknown)
		}
	}

	if got := r.GetOr(0.0, "device", "mac"); got != 0.0 {
		t.Errorf("GetOr default = %v, want 0", got)
	}
}

func TestAsStringNumbersKeepShortestForm(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{float64(101), "101"},
		{float64(0.42), "0.42"},
		{nil, ""},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := AsString(tc.in); got != tc.want {
			t.Errorf("AsString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAsBoolTruthiness(t *testing.T) {
	if !AsBool(true) || !AsBool(float64(1)) {
		t.Error("true and 1 should be truthy")
	}
	if AsBool(false) || AsBool(float64(0)) || AsBool("yes") || AsBool(nil) {
		t.Error("false, 0, strings and nil should be falsy")
	}
}

func TestAsInt64(t *testing.T) {
	if got := AsInt64(float64(1700000000000)); got != 1700000000000 {
		t.Errorf("AsInt64 = %d", got)
	}
	if got := AsInt64("nope"); got != 0 {
		t.Errorf("AsInt64(non-number) = %d, want 0", got)
	}
}

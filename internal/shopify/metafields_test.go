package shopify

import "testing"

func TestDecodeProductOverrides(t *testing.T) {
	overrides := DecodeProductOverrides([]Metafield{
		{Namespace: "delivery", Key: "enabled", Value: "false"},
		{Namespace: "delivery", Key: "cutoff_hours", Value: "12"},
		{Namespace: "delivery", Key: "max_days_ahead", Value: "7"},
		{Namespace: "delivery", Key: "daily_capacity", Value: "5"},
		{Namespace: "other", Key: "cutoff_hours", Value: "99"}, // wrong namespace
	})

	if overrides.Enabled == nil || *overrides.Enabled {
		t.Errorf("enabled = %v, want false", overrides.Enabled)
	}
	if overrides.CutoffHours == nil || *overrides.CutoffHours != 12 {
		t.Errorf("cutoffHours = %v, want 12", overrides.CutoffHours)
	}
	if overrides.MaxDaysAhead == nil || *overrides.MaxDaysAhead != 7 {
		t.Errorf("maxDaysAhead = %v, want 7", overrides.MaxDaysAhead)
	}
	if overrides.DailyCapacity == nil || *overrides.DailyCapacity != 5 {
		t.Errorf("dailyCapacity = %v, want 5", overrides.DailyCapacity)
	}
	if !overrides.Disabled() {
		t.Error("enabled=false should report Disabled")
	}
}

func TestDecodeProductOverrides_AbsentAndUnparsable(t *testing.T) {
	overrides := DecodeProductOverrides([]Metafield{
		{Namespace: "delivery", Key: "cutoff_hours", Value: "noon"},
	})
	if overrides.CutoffHours != nil {
		t.Errorf("unparsable cutoff_hours should stay nil, got %v", overrides.CutoffHours)
	}
	if overrides.Enabled != nil {
		t.Errorf("absent enabled should stay nil, got %v", overrides.Enabled)
	}
	if overrides.Disabled() {
		t.Error("absent enabled must not count as disabled")
	}
}

func TestDecodeProductOverrides_EnabledTrue(t *testing.T) {
	overrides := DecodeProductOverrides([]Metafield{
		{Namespace: "delivery", Key: "enabled", Value: "true"},
	})
	if overrides.Enabled == nil || !*overrides.Enabled {
		t.Errorf("enabled = %v, want true", overrides.Enabled)
	}
	if overrides.Disabled() {
		t.Error("enabled=true must not report Disabled")
	}
}

func TestNormalizeProductID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"gid://shopify/Product/123456", "123456"},
		{"123456", "123456"},
		{"  gid://shopify/Product/9  ", "9"},
	}
	for _, tc := range tests {
		if got := NormalizeProductID(tc.in); got != tc.want {
			t.Errorf("NormalizeProductID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package model

// ShopSettings is the per-shop delivery configuration. A shop that has never
// saved settings gets DefaultSettings.
type ShopSettings struct {
	CutoffTime           string // local "HH:MM"
	DailyCapacity        int
	MaxDaysAhead         int
	AllowWeekendDelivery bool
	Timezone             string // IANA name
	ShowOnCartPage       bool
}

func DefaultSettings() ShopSettings {
	return ShopSettings{
		CutoffTime:           "14:00",
		DailyCapacity:        50,
		MaxDaysAhead:         30,
		AllowWeekendDelivery: false,
		Timezone:             "UTC",
		ShowOnCartPage:       false,
	}
}

// ProductOverrides carries product-level delivery settings synced from product
// metafields. Nil pointers mean "not set, fall back to shop settings";
// Enabled=false disables the picker for the product outright.
type ProductOverrides struct {
	Enabled       *bool
	CutoffHours   *int // local hour of day 0-23
	MaxDaysAhead  *int
	DailyCapacity *int
}

func (o *ProductOverrides) Disabled() bool {
	return o != nil && o.Enabled != nil && !*o.Enabled
}

// BlackoutEntry excludes a calendar date from delivery. Recurring entries match
// by month-day every year; Date may then be stored as "YYYY-MM-DD" or "MM-DD".
type BlackoutEntry struct {
	ID        string
	Date      string
	Recurring bool
	Label     string
}

// AddOn is an optional extra offered next to the date picker. Selecting one
// adds the linked variant to the cart; Price is display-only.
type AddOn struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	VariantID string  `json:"variantId"`
	SortOrder int     `json:"sortOrder"`
	Active    bool    `json:"active"`
}

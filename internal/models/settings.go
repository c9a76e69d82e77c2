package models

// Settings holds application-level configuration persisted by the store.
type Settings struct {
	Timezone            string `json:"timezone"`
	WeekStart           string `json:"week_start"` // weekday name, e.g. "monday"
	AutoPromoteSubitems bool   `json:"auto_promote_subitems"`
	DeviceName          string `json:"device_name"`
}

package constants

const (
	// General Settings
	SettingTimezone            = "timezone"
	SettingWeekStart           = "week_start"
	SettingAutoPromoteSubitems = "auto_promote_subitems"
	SettingDeviceName          = "device_name"

	// Default Settings Values
	DefaultTimezone            = "Local" // Use system local timezone by default
	DefaultWeekStart           = "monday"
	DefaultAutoPromoteSubitems = true
)

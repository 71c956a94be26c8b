package models

import "github.com/smazurov/blnd/internal/version"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionResponse struct {
	Body version.Info
}

// Attribute models
type AttributeData struct {
	Name     string `json:"name" example:"blink_interval" doc:"Attribute name"`
	Value    string `json:"value" example:"500\n" doc:"Attribute value as read from the attribute"`
	Writable bool   `json:"writable" example:"true" doc:"Whether the attribute accepts writes"`
}

type AttributeListData struct {
	Attributes []AttributeData `json:"attributes" doc:"Every attribute with its current value"`
}

type AttributeListResponse struct {
	Body AttributeListData
}

type AttributePath struct {
	Name string `path:"name" example:"enabled" doc:"Attribute name"`
}

type AttributeResponse struct {
	Body AttributeData
}

type AttributeWriteRequest struct {
	Name string `path:"name" example:"enabled" doc:"Attribute name"`
	Body struct {
		Value string `json:"value" example:"1" doc:"Text written to the attribute, parsed as an unsigned decimal"`
	}
}

type AttributeWriteData struct {
	AttributeData
	Consumed int `json:"consumed" example:"2" doc:"Bytes consumed by the write"`
}

type AttributeWriteResponse struct {
	Body AttributeWriteData
}

// State models
type StateData struct {
	Mode             string `json:"mode" example:"blinking" enum:"disabled,idle,steady,blinking" doc:"State machine position"`
	Enabled          bool   `json:"enabled" doc:"Notification function enabled"`
	Ongoing          bool   `json:"ongoing" doc:"Notification active"`
	BlinkState       bool   `json:"blink_state" doc:"True while the LED is in its off phase"`
	Suspended        bool   `json:"suspended" doc:"Display blanked"`
	InKernelBlink    bool   `json:"in_kernel_blink" doc:"Timer-driven blinking selected"`
	BlinkIntervalMs  uint32 `json:"blink_interval_ms" example:"500" doc:"Blink interval"`
	BlinkMaxCount    uint32 `json:"blink_max_count" example:"600" doc:"Toggles before timeout"`
	BlinkCountdown   uint32 `json:"blink_countdown" example:"598" doc:"Remaining toggles"`
	TimerArmed       bool   `json:"timer_armed" doc:"Blink timer pending"`
	WakelockHeld     bool   `json:"wakelock_held" doc:"Wakelock held"`
	Backlight        string `json:"backlight" example:"sysfs:button-backlight" doc:"Registered backlight, empty when none"`
	DisplaySuspended bool   `json:"display_suspended" doc:"Last edge seen by the suspend observer"`
}

type StateResponse struct {
	Body StateData
}

// Display models
type DisplayRequest struct {
	Body struct {
		Suspended bool `json:"suspended" doc:"True when the display was blanked"`
	}
}

// Backlight models
type BacklightRequest struct {
	Body struct {
		Backend    string `json:"backend" example:"sysfs" enum:"auto,sysfs,command,none" doc:"Backlight backend"`
		Device     string `json:"device,omitempty" example:"button-backlight" doc:"LED class device for the sysfs backend"`
		OnCommand  string `json:"on_command,omitempty" example:"/usr/bin/greenled.sh 1" doc:"Command run to switch the LED on"`
		OffCommand string `json:"off_command,omitempty" example:"/usr/bin/greenled.sh 0" doc:"Command run to switch the LED off"`
	}
}

type BacklightData struct {
	Registered string   `json:"registered" example:"sysfs:button-backlight" doc:"Registered backlight, empty when none"`
	Available  []string `json:"available" doc:"LED class devices found on this system"`
}

type BacklightResponse struct {
	Body BacklightData
}

package model

import (
	"fmt"
	"time"
)

// Theme is the presentation colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Themes lists the accepted themes.
var Themes = []Theme{ThemeLight, ThemeDark}

// Font is the presentation typeface preference.
type Font string

const (
	FontVazir Font = "vazir"
	FontSahel Font = "sahel"
	FontTanha Font = "tanha"
)

// Fonts lists the accepted fonts.
var Fonts = []Font{FontVazir, FontSahel, FontTanha}

// Settings is the user configuration persisted under the "settings" key.
type Settings struct {
	NotificationDays     int   `json:"notificationDays"`
	NotificationsEnabled bool  `json:"enableNotifications"`
	Theme                Theme `json:"theme"`
	Font                 Font  `json:"font"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		NotificationDays:     3,
		NotificationsEnabled: true,
		Theme:                ThemeLight,
		Font:                 FontVazir,
	}
}

// Validate checks ranges and enum membership.
func (s Settings) Validate() error {
	if s.NotificationDays < 0 {
		return &ValidationError{Field: "notificationDays", Reason: "must not be negative"}
	}
	if !contains(Themes, s.Theme) {
		return &ValidationError{Field: "theme", Reason: fmt.Sprintf("unknown theme %q", s.Theme)}
	}
	if !contains(Fonts, s.Font) {
		return &ValidationError{Field: "font", Reason: fmt.Sprintf("unknown font %q", s.Font)}
	}
	return nil
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// NotificationTTL is how long a surface shows a notification before dismissing it.
const NotificationTTL = 5 * time.Second

// Notification is an event emitted toward the presentation layer.
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

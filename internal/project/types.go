package project

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/pinhub-core/internal/pin"
)

// User identifies the owner of one or more projects.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Kind is the widget variant tag. Typed singleton widgets (notification,
// mail) are addressable by kind; at most one of each exists per project.
type Kind string

// Widget kinds.
const (
	KindButton       Kind = "button"
	KindSlider       Kind = "slider"
	KindDisplay      Kind = "display"
	KindNotification Kind = "notification"
	KindMail         Kind = "mail"
)

// Widget is a control abstraction bound to zero or one pin address,
// holding the last value(s) received for that address.
type Widget struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// Pin is the bound address, or nil when the widget is unbound.
	// At most one widget in a project claims a given address.
	Pin *pin.Address `json:"pin,omitempty"`

	// Values holds the last values written to or received for the pin.
	Values []string `json:"values"`

	// DeviceTokens holds registered push tokens. Only meaningful for
	// KindNotification widgets.
	DeviceTokens []string `json:"device_tokens,omitempty"`
}

// JSONValue returns the widget's current values serialised as a JSON array.
func (w *Widget) JSONValue() string {
	data, err := json.Marshal(w.Values)
	if err != nil {
		// []string cannot fail to marshal; keep the API total anyway.
		return "[]"
	}
	return string(data)
}

// HasDeviceToken reports whether at least one push token is registered.
func (w *Widget) HasDeviceToken() bool {
	for _, t := range w.DeviceTokens {
		if t != "" {
			return true
		}
	}
	return false
}

// DeepCopy returns an independent copy of the widget.
func (w *Widget) DeepCopy() *Widget {
	cp := *w
	if w.Pin != nil {
		p := *w.Pin
		cp.Pin = &p
	}
	cp.Values = append([]string(nil), w.Values...)
	cp.DeviceTokens = append([]string(nil), w.DeviceTokens...)
	return &cp
}

// Project is a user's configured collection of widgets.
type Project struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
	Widgets  []*Widget `json:"widgets"`
}

// WidgetByPin returns the widget bound to the given address.
//
// Project editing upholds a uniqueness invariant (one widget per address),
// so a linear scan suffices. Should that invariant ever be violated, the
// first match in widget order is returned deterministically.
func (p *Project) WidgetByPin(addr pin.Address) (*Widget, bool) {
	for _, w := range p.Widgets {
		if w.Pin != nil && *w.Pin == addr {
			return w, true
		}
	}
	return nil, false
}

// WidgetByKind returns the typed singleton widget of the given kind.
func (p *Project) WidgetByKind(kind Kind) (*Widget, bool) {
	for _, w := range p.Widgets {
		if w.Kind == kind {
			return w, true
		}
	}
	return nil, false
}

// DeepCopy returns an independent copy of the project and its widgets.
func (p *Project) DeepCopy() *Project {
	cp := *p
	cp.Widgets = make([]*Widget, len(p.Widgets))
	for i, w := range p.Widgets {
		cp.Widgets[i] = w.DeepCopy()
	}
	return &cp
}

// Binding maps an authentication token to its owning user and project.
type Binding struct {
	UserID    string
	ProjectID int64
}

// Profile is one user together with all their projects, as loaded from
// the repository.
type Profile struct {
	User     User
	Projects []*Project
}

// String implements fmt.Stringer for log output without dumping widgets.
func (p *Project) String() string {
	return fmt.Sprintf("project %d (%s, active=%t, %d widgets)", p.ID, p.Name, p.IsActive, len(p.Widgets))
}

package vehicle

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// UnknownValue is shown for a missing name, model or year.
	UnknownValue = "Unknown"
	// NotSpecified is shown for a missing VIN.
	NotSpecified = "Not specified"
)

// Vehicle is one record of the vehicle list as the provider returned it.
type Vehicle struct {
	// ID is the provider's record identity.
	ID string `json:"id" yaml:"id"`

	Name  string `json:"name" yaml:"name"`
	VIN   string `json:"vin" yaml:"vin"`
	Model string `json:"model" yaml:"model"`

	// Year is kept as text; providers may send a number or a string.
	Year string `json:"year" yaml:"year"`
}

// View is the normalized, display-ready form of a Vehicle.
type View struct {
	ID    string
	Name  string
	VIN   string
	Model string
	Year  string
}

// Normalize applies display defaults. The VIN is trimmed but never defaulted.
func (v Vehicle) Normalize() View {
	return View{
		ID:    v.ID,
		Name:  orUnknown(v.Name),
		VIN:   strings.TrimSpace(v.VIN),
		Model: orUnknown(v.Model),
		Year:  orUnknown(v.Year),
	}
}

// CanDecode reports whether the record carries a usable VIN.
func (v View) CanDecode() bool {
	return v.VIN != ""
}

// VINDisplay returns the VIN or "Not specified".
func (v View) VINDisplay() string {
	if v.VIN == "" {
		return NotSpecified
	}
	return v.VIN
}

// String returns a one-line description used by the list and CLI output.
func (v View) String() string {
	return fmt.Sprintf("%s (%s %s, VIN %s)", v.Name, v.Year, v.Model, v.VINDisplay())
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return UnknownValue
	}
	return s
}

// flexString accepts a JSON string, number or boolean and keeps its text.
// Null and absent values decode to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return fmt.Errorf("expected a scalar, got %s", data[:1])
	}
	*f = flexString(data)
	return nil
}

// Package output renders scanned devices for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
	"github.com/smazurov/lightnode/internal/devices"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists every accepted format name.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatTOML}

// tomlDocument wraps the list since a TOML document must be a table.
type tomlDocument struct {
	Devices []devices.Device `toml:"devices"`
}

// ValidateFormat reports whether format is known.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("unknown output format %q (want one of %v)", format, Formats)
	}
	return nil
}

// Write renders devs to w in enumeration order.
func Write(w io.Writer, format string, devs []devices.Device) error {
	if devs == nil {
		devs = []devices.Device{}
	}

	switch format {
	case FormatText, "":
		return writeText(w, devs)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(devs)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(devs); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(tomlDocument{Devices: devs})
	default:
		return ValidateFormat(format)
	}
}

// writeText prints one "name brightness/max_brightness" line per device.
func writeText(w io.Writer, devs []devices.Device) error {
	lines := lo.Map(devs, func(d devices.Device, _ int) string {
		return fmt.Sprintf("%s %d/%d\n", d.Name, d.Brightness, d.MaxBrightness)
	})
	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

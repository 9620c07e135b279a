package devices

// Device is one light-emitting unit (LED class device or backlight) read from sysfs.
// Devices are plain values: loaders hand out copies and never modify them afterwards.
// Fresh brightness requires a new scan.
type Device struct {
	Name          string `json:"name" yaml:"name" toml:"name"`
	Path          string `json:"path" yaml:"path" toml:"path"`
	Brightness    int64  `json:"brightness" yaml:"brightness" toml:"brightness"`
	MaxBrightness int64  `json:"max_brightness" yaml:"max_brightness" toml:"max_brightness"`
}

// Percent returns brightness relative to max brightness in the range the device reports.
// Returns 0 for devices with a non-positive max brightness.
func (d Device) Percent() float64 {
	if d.MaxBrightness <= 0 {
		return 0
	}
	return float64(d.Brightness) * 100 / float64(d.MaxBrightness)
}

// Skipped records a candidate directory that could not be turned into a Device
// by the lenient loader.
type Skipped struct {
	Path string `json:"path" yaml:"path" toml:"path"`
	Err  error  `json:"-" yaml:"-" toml:"-"`
}

package devices

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/smazurov/lightnode/internal/events"
	"github.com/spf13/afero"
)

func newTestTree(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	writeDevice(t, fsys, "/sys/class/leds/led0", "3\n", "15\n")
	writeDevice(t, fsys, "/sys/class/leds/input3::capslock", "0\n", "1\n")
	writeDevice(t, fsys, "/sys/class/backlight/lcd0", "120\n", "255\n")
	writeFile(t, fsys, "/sys/class/backlight/README", "clutter\n")
	return fsys
}

func TestDetector_ScanDefaultRoots(t *testing.T) {
	d := NewDetector(Options{Fs: newTestTree(t), Logger: quietLogger()})

	got, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []Device{
		{Name: "input3::capslock", Path: "/sys/class/leds/input3::capslock", Brightness: 0, MaxBrightness: 1},
		{Name: "led0", Path: "/sys/class/leds/led0", Brightness: 3, MaxBrightness: 15},
		{Name: "lcd0", Path: "/sys/class/backlight/lcd0", Brightness: 120, MaxBrightness: 255},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() = %+v, want %+v", got, want)
	}
}

func TestDetector_ScanIsDeterministic(t *testing.T) {
	d := NewDetector(Options{Fs: newTestTree(t), Workers: 4, Logger: quietLogger()})

	first, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}
	second, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Scans differ: %+v vs %+v", first, second)
	}
}

func TestDetector_ScanReadsFreshState(t *testing.T) {
	fsys := newTestTree(t)
	d := NewDetector(Options{Fs: fsys, Roots: []string{"/sys/class/leds"}, Logger: quietLogger()})

	before, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	writeFile(t, fsys, "/sys/class/leds/led0/brightness", "9\n")

	after, err := d.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if before[1].Brightness != 3 || after[1].Brightness != 9 {
		t.Errorf("Expected brightness 3 then 9, got %d then %d", before[1].Brightness, after[1].Brightness)
	}
}

func TestDetector_MissingRootFailsBeforeReadingDevices(t *testing.T) {
	fsys := newTestTree(t)
	// A malformed device in the first root would fail the scan if it were read.
	writeDevice(t, fsys, "/sys/class/leds/bad0", "N/A", "1")

	d := NewDetector(Options{
		Fs:     fsys,
		Roots:  []string{"/sys/class/leds", "/sys/class/nope"},
		Logger: quietLogger(),
	})

	_, err := d.Scan(context.Background())
	var rootErr *RootUnreadableError
	if !errors.As(err, &rootErr) {
		t.Fatalf("Expected *RootUnreadableError, got %T: %v", err, err)
	}
	if rootErr.Root != "/sys/class/nope" {
		t.Errorf("Root = %q, want /sys/class/nope", rootErr.Root)
	}

	_, _, err = d.ScanLenient(context.Background())
	if !errors.As(err, &rootErr) {
		t.Fatalf("ScanLenient: expected *RootUnreadableError, got %T: %v", err, err)
	}
}

func TestDetector_ScanLenient(t *testing.T) {
	fsys := newTestTree(t)
	writeDevice(t, fsys, "/sys/class/leds/bad0", "N/A", "1")

	d := NewDetector(Options{Fs: fsys, Logger: quietLogger()})

	if _, err := d.Scan(context.Background()); err == nil {
		t.Fatal("Expected strict Scan to fail")
	}

	got, skipped, err := d.ScanLenient(context.Background())
	if err != nil {
		t.Fatalf("ScanLenient failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Expected 3 devices, got %+v", got)
	}
	if len(skipped) != 1 || skipped[0].Path != "/sys/class/leds/bad0" {
		t.Errorf("Expected bad0 skipped, got %+v", skipped)
	}
}

func TestDetector_SysfsRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeDevice(t, fsys, "/snapshot/sys/class/backlight/lcd0", "5", "10")
	writeDevice(t, fsys, "/snapshot/sys/class/leds/bad0", "x", "1")

	d := NewDetector(Options{Fs: fsys, SysfsRoot: "/snapshot", Logger: quietLogger()})

	wantRoots := []string{"/snapshot/sys/class/leds", "/snapshot/sys/class/backlight"}
	if !reflect.DeepEqual(d.Roots(), wantRoots) {
		t.Errorf("Roots() = %v, want %v", d.Roots(), wantRoots)
	}

	got, skipped, err := d.ScanLenient(context.Background())
	if err != nil {
		t.Fatalf("ScanLenient failed: %v", err)
	}
	want := []Device{{Name: "lcd0", Path: "/snapshot/sys/class/backlight/lcd0", Brightness: 5, MaxBrightness: 10}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanLenient() = %+v, want %+v", got, want)
	}

	// The recorded path must open the real directory without re-deriving it.
	if _, err := fsys.Stat(filepath.Join(got[0].Path, AttrBrightness)); err != nil {
		t.Errorf("Device.Path does not point at the device: %v", err)
	}

	var parseErr *AttributeParseError
	if len(skipped) != 1 || !errors.As(skipped[0].Err, &parseErr) {
		t.Fatalf("Expected bad0 skipped with a parse error, got %+v", skipped)
	}
	if parseErr.AttributePath() != "/snapshot/sys/class/leds/bad0/brightness" {
		t.Errorf("AttributePath() = %q, want prefixed path", parseErr.AttributePath())
	}
}

func TestDetector_SysfsRootMissingRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeDevice(t, fsys, "/snapshot/sys/class/leds/led0", "1", "1")

	d := NewDetector(Options{Fs: fsys, SysfsRoot: "/snapshot", Logger: quietLogger()})

	_, err := d.Scan(context.Background())
	var rootErr *RootUnreadableError
	if !errors.As(err, &rootErr) {
		t.Fatalf("Expected *RootUnreadableError, got %T: %v", err, err)
	}
	if rootErr.Root != "/snapshot/sys/class/backlight" {
		t.Errorf("Root = %q, want /snapshot/sys/class/backlight", rootErr.Root)
	}
}

func TestDetector_Roots(t *testing.T) {
	d := NewDetector(Options{Fs: afero.NewMemMapFs(), Logger: quietLogger()})
	if !reflect.DeepEqual(d.Roots(), DefaultRoots) {
		t.Errorf("Roots() = %v, want %v", d.Roots(), DefaultRoots)
	}

	empty := NewDetector(Options{Fs: afero.NewMemMapFs(), Roots: []string{}, Logger: quietLogger()})
	if !reflect.DeepEqual(empty.Roots(), DefaultRoots) {
		t.Errorf("Empty Roots should select DefaultRoots, got %v", empty.Roots())
	}

	rooted := NewDetector(Options{Fs: afero.NewMemMapFs(), SysfsRoot: "/", Logger: quietLogger()})
	if !reflect.DeepEqual(rooted.Roots(), DefaultRoots) {
		t.Errorf("SysfsRoot / should not change roots, got %v", rooted.Roots())
	}

	roots := d.Roots()
	roots[0] = "/changed"
	if d.Roots()[0] == "/changed" {
		t.Error("Roots() exposes internal state")
	}
}

func TestDetector_PublishesEvents(t *testing.T) {
	fsys := newTestTree(t)
	writeDevice(t, fsys, "/sys/class/leds/bad0", "", "1")

	bus := events.New()
	loaded := make(chan events.DeviceLoadedEvent, 10)
	skipped := make(chan events.DeviceSkippedEvent, 10)
	completed := make(chan events.ScanCompletedEvent, 10)

	defer events.SubscribeToChannel(bus, loaded)()
	defer events.SubscribeToChannel(bus, skipped)()
	defer events.SubscribeToChannel(bus, completed)()

	d := NewDetector(Options{Fs: fsys, EventBus: bus, Logger: quietLogger()})
	if _, _, err := d.ScanLenient(context.Background()); err != nil {
		t.Fatalf("ScanLenient failed: %v", err)
	}

	select {
	case ev := <-completed:
		if ev.Devices != 3 || ev.Skipped != 1 || ev.Failed() {
			t.Errorf("Unexpected completion event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for ScanCompletedEvent")
	}

	select {
	case ev := <-skipped:
		if ev.Path != "/sys/class/leds/bad0" || ev.Error == "" {
			t.Errorf("Unexpected skipped event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for DeviceSkippedEvent")
	}

	for i := 0; i < 3; i++ {
		select {
		case <-loaded:
		case <-time.After(time.Second):
			t.Fatalf("Timed out waiting for DeviceLoadedEvent %d", i+1)
		}
	}

	if _, err := d.Scan(context.Background()); err == nil {
		t.Fatal("Expected strict Scan to fail")
	}
	select {
	case ev := <-completed:
		if !ev.Failed() {
			t.Errorf("Expected failed completion event, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for failed ScanCompletedEvent")
	}
}

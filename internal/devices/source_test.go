package devices

import (
	"errors"
	"io/fs"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func TestListCandidateDirs(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeDevice(t, fsys, "/class/leds/led1", "0", "1")
	writeDevice(t, fsys, "/class/leds/led0", "0", "1")
	writeFile(t, fsys, "/class/leds/README", "x")
	writeDevice(t, fsys, "/class/backlight/lcd0", "0", "1")

	got, err := ListCandidateDirs(fsys, []string{"/class/leds", "/class/backlight"})
	if err != nil {
		t.Fatalf("ListCandidateDirs failed: %v", err)
	}

	want := []string{
		"/class/leds/README",
		"/class/leds/led0",
		"/class/leds/led1",
		"/class/backlight/lcd0",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListCandidateDirs() = %v, want %v", got, want)
	}
}

func TestListCandidateDirs_EmptyRoots(t *testing.T) {
	got, err := ListCandidateDirs(afero.NewMemMapFs(), nil)
	if err != nil {
		t.Fatalf("ListCandidateDirs failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no candidates, got %v", got)
	}
}

func TestListCandidateDirs_EmptyRootDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/class/leds", 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListCandidateDirs(fsys, []string{"/class/leds"})
	if err != nil {
		t.Fatalf("ListCandidateDirs failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no candidates, got %v", got)
	}
}

func TestListCandidateDirs_RootUnreadable(t *testing.T) {
	tests := []struct {
		name      string
		roots     []string
		wantRoot  string
		wantCause error
	}{
		{
			name:      "missing first root",
			roots:     []string{"/class/missing", "/class/leds"},
			wantRoot:  "/class/missing",
			wantCause: fs.ErrNotExist,
		},
		{
			name:      "missing second root",
			roots:     []string{"/class/leds", "/class/missing"},
			wantRoot:  "/class/missing",
			wantCause: fs.ErrNotExist,
		},
		{
			name:      "root is a file",
			roots:     []string{"/class/leds", "/class/file"},
			wantRoot:  "/class/file",
			wantCause: ErrNotDirectory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeDevice(t, fsys, "/class/leds/led0", "0", "1")
			writeFile(t, fsys, "/class/file", "x")

			got, err := ListCandidateDirs(fsys, tt.roots)
			if got != nil {
				t.Errorf("Expected no candidates on failure, got %v", got)
			}

			var rootErr *RootUnreadableError
			if !errors.As(err, &rootErr) {
				t.Fatalf("Expected *RootUnreadableError, got %T: %v", err, err)
			}
			if rootErr.Root != tt.wantRoot {
				t.Errorf("Root = %q, want %q", rootErr.Root, tt.wantRoot)
			}
			if !errors.Is(err, tt.wantCause) {
				t.Errorf("Expected cause %v, got %v", tt.wantCause, err)
			}
		})
	}
}

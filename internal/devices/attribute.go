package devices

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// Attribute file names inside a device directory.
const (
	AttrBrightness    = "brightness"
	AttrMaxBrightness = "max_brightness"
)

// deviceName returns the leaf of a device directory path.
func deviceName(path string) (string, error) {
	if path == "" {
		return "", &NameDecodeError{Path: path}
	}

	leaf := filepath.Base(filepath.Clean(path))
	switch leaf {
	case ".", "..", string(filepath.Separator):
		return "", &NameDecodeError{Path: path}
	}
	if !utf8.ValidString(leaf) {
		return "", &NameDecodeError{Path: path}
	}

	return leaf, nil
}

// readIntAttribute reads a single integer attribute such as "brightness" from a device directory.
func readIntAttribute(fsys afero.Fs, dir, file string) (int64, error) {
	data, err := afero.ReadFile(fsys, filepath.Join(dir, file))
	if err != nil {
		return 0, &AttributeReadError{Device: dir, File: file, Err: err}
	}

	return parseIntAttribute(dir, file, string(data))
}

func parseIntAttribute(dir, file, content string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(content), 10, 64)
	if err != nil {
		return 0, &AttributeParseError{Device: dir, File: file, Content: content, Err: err}
	}
	return value, nil
}

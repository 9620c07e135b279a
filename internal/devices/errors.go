package devices

import (
	"fmt"
	"path/filepath"
)

// RootUnreadableError reports a device root that could not be opened or listed.
type RootUnreadableError struct {
	Root string
	Err  error
}

func (e *RootUnreadableError) Error() string {
	return fmt.Sprintf("cannot read device root %s: %v", e.Root, e.Err)
}

func (e *RootUnreadableError) Unwrap() error { return e.Err }

// NameDecodeError reports a device directory whose leaf name is missing or not valid text.
type NameDecodeError struct {
	Path string
}

func (e *NameDecodeError) Error() string {
	return fmt.Sprintf("cannot decode device name from path %q", e.Path)
}

// AttributeReadError reports an attribute file that could not be opened or read.
// A device removed between listing and reading ends up here.
type AttributeReadError struct {
	Device string
	File   string
	Err    error
}

func (e *AttributeReadError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.AttributePath(), e.Err)
}

func (e *AttributeReadError) Unwrap() error { return e.Err }

// AttributePath returns the full path of the attribute file.
func (e *AttributeReadError) AttributePath() string {
	return filepath.Join(e.Device, e.File)
}

// AttributeParseError reports attribute content that is not a base-10 integer.
// Content holds the raw, untrimmed file content.
type AttributeParseError struct {
	Device  string
	File    string
	Content string
	Err     error
}

func (e *AttributeParseError) Error() string {
	return fmt.Sprintf("invalid integer %q in %s", e.Content, e.AttributePath())
}

func (e *AttributeParseError) Unwrap() error { return e.Err }

// AttributePath returns the full path of the attribute file.
func (e *AttributeParseError) AttributePath() string {
	return filepath.Join(e.Device, e.File)
}

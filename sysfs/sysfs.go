// Package sysfs reads kernel device attributes from a mounted sysfs
// tree, one file per attribute.
package sysfs

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultMountPoint is where sysfs usually lives.
const DefaultMountPoint = "/sys"

// Device is one kernel device under a sysfs mount point.
type Device struct {
	// MountPoint is the sysfs root, DefaultMountPoint when empty.
	MountPoint string
	// DevPath is the kernel device path relative to the mount point,
	// e.g. /class/misc/test.
	DevPath string
}

// Attr returns the raw value of the named attribute with surrounding
// whitespace trimmed, and whether the attribute exists at all.
func (d Device) Attr(name string) (string, bool) {
	mount := d.MountPoint
	if mount == "" {
		mount = DefaultMountPoint
	}

	b, err := os.ReadFile(filepath.Join(mount, d.DevPath, name))
	if err != nil {
		return "", false
	}

	return strings.TrimSpace(string(b)), true
}

// Name returns the kernel name of the device, the last element of its
// device path.
func (d Device) Name() string {
	return filepath.Base(d.DevPath)
}

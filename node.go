package devd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// typeBits maps a device class to the file type bits of its node.
func typeBits(class Class) (uint32, error) {
	switch class {
	case ClassBlock:
		return unix.S_IFBLK, nil
	case ClassChar, ClassUnix:
		return unix.S_IFCHR, nil
	case ClassFifo:
		return unix.S_IFIFO, nil
	default:
		return 0, fmt.Errorf("%w: %c", ErrUnknownClass, byte(class))
	}
}

// createNode turns one named device into all its on-disk artifacts:
// the primary node, the partition nodes and the requested symlinks.
// Partition and symlink failures are logged and do not abort their
// siblings; a primary node failure aborts the device.
func (d *Devd) createNode(dev *Device) error {
	bits, err := typeBits(dev.Class)
	if err != nil {
		return err
	}
	mode := dev.Mode | bits

	nodePath := filepath.Join(d.conf.Root, dev.Name)

	// create parent directories if needed
	if strings.ContainsRune(dev.Name, '/') && !d.conf.DryRun {
		if err := os.MkdirAll(filepath.Dir(nodePath), 0755); err != nil {
			return fmt.Errorf("creating path for node %q: %s", nodePath, err)
		}
	}

	uid, err := resolveUser(dev.Owner)
	if err != nil {
		log.Debugf("%s, defaulting to uid 0", err)
	}
	gid, err := resolveGroup(dev.Group)
	if err != nil {
		log.Debugf("%s, defaulting to gid 0", err)
	}

	log.Infof(
		"creating device node %q, major=%d, minor=%d, mode=%#o, uid=%d, gid=%d",
		nodePath, dev.Major, dev.Minor, mode, uid, gid,
	)
	if err := d.makeNode(nodePath, dev.Major, dev.Minor, mode, uid, gid); err != nil {
		return err
	}

	if dev.Partitions > 0 {
		log.Infof("creating device partition nodes %q[1-%d]", nodePath, dev.Partitions)
		for i := 1; i <= dev.Partitions; i++ {
			partPath := nodePath + strconv.Itoa(i)
			err := d.makeNode(partPath, dev.Major, dev.Minor+uint32(i), mode, uid, gid)
			if err != nil {
				log.Errorf("creating partition node %q: %s", partPath, err)
			}
		}
	}

	for _, alias := range dev.Symlinks {
		if err := d.createAlias(dev.Name, alias); err != nil {
			log.Errorf("creating symlink %q to node %q: %s", alias, dev.Name, err)
		}
	}

	return nil
}

// makeNode creates or confirms a single special file. A node that
// already carries the requested device number is preserved so its
// inode number does not change under consumers that already hold a
// reference to it.
func (d *Devd) makeNode(path string, major, minor, mode uint32, uid, gid uint32) error {
	if d.conf.DryRun {
		log.Infof(
			"mknod %q, major=%d, minor=%d, mode=%#o, uid=%d, gid=%d (dry run)",
			path, major, minor, mode, uid, gid,
		)
		return nil
	}

	var st unix.Stat_t
	if err := unix.Stat(path, &st); err == nil {
		if nodeHasIdentity(&st, major, minor) {
			log.Debugf("preserving node %q, it already has the correct device number", path)
			d.label.SetFileLabel(path, uint32(st.Mode))
			return d.applyPerms(path, mode, uid, gid)
		}

		if err := unix.Unlink(path); err != nil {
			log.Debugf("unlink %q: %s", path, err)
		} else {
			log.Debugf("already present file %q unlinked", path)
		}
	}

	d.label.SetCreateLabel(path, mode)

	oldMask := unix.Umask(0000)
	err := unix.Mknod(path, mode, int(unix.Mkdev(major, minor)&0xffffffff))
	unix.Umask(oldMask)
	if err != nil {
		// a concurrent event for the same device may have won the race;
		// accept the node it created as long as the identity matches
		if os.IsExist(err) {
			if e := unix.Stat(path, &st); e == nil && nodeHasIdentity(&st, major, minor) {
				log.Debugf("node %q created concurrently with correct device number", path)
				return d.applyPerms(path, mode, uid, gid)
			}
		}
		return fmt.Errorf("%w %q: %s", ErrNodeCreate, path, err)
	}

	return d.applyPerms(path, mode, uid, gid)
}

func nodeHasIdentity(st *unix.Stat_t, major, minor uint32) bool {
	fileType := st.Mode & unix.S_IFMT
	if fileType != unix.S_IFBLK && fileType != unix.S_IFCHR {
		return false
	}
	return st.Rdev == unix.Mkdev(major, minor)
}

func (d *Devd) applyPerms(path string, mode uint32, uid, gid uint32) error {
	log.Debugf("chmod(%q, %#o)", path, mode)
	if err := unix.Chmod(path, mode); err != nil {
		return fmt.Errorf("%w %q: %s", ErrPermissionApply, path, err)
	}

	if uid != 0 || gid != 0 {
		log.Debugf("chown(%q, %d, %d)", path, uid, gid)
		if err := unix.Chown(path, int(uid), int(gid)); err != nil {
			return fmt.Errorf("%w %q: %s", ErrOwnershipApply, path, err)
		}
	}

	return nil
}

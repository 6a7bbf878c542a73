package devd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// linkTarget computes the shortest relative symlink target pointing
// from the alias location to the canonical node. Both names are
// relative to the device root, so the result is independent of where
// that root is mounted.
func linkTarget(name, alias string) string {
	// walk the common prefix, remembering where the last shared
	// directory ends
	i, tail := 0, 0
	for i < len(name) && i < len(alias) && name[i] == alias[i] {
		if name[i] == '/' {
			tail = i + 1
		}
		i++
	}

	// one level up for every directory the alias descends past the
	// divergence point, then down to the node
	var target strings.Builder
	for j := i; j < len(alias); j++ {
		if alias[j] == '/' {
			target.WriteString("../")
		}
	}
	target.WriteString(name[tail:])

	return target.String()
}

// createAlias (re)creates one symlink alias for the node with the
// given canonical name. Unlike primary nodes, aliases are cheap to
// recreate, so any pre-existing object at the alias path is replaced
// unconditionally.
func (d *Devd) createAlias(name, alias string) error {
	linkPath := filepath.Join(d.conf.Root, alias)
	log.Debugf("symlink %q to node %q requested", linkPath, name)

	target := linkTarget(name, alias)
	log.Debugf("symlink(%q, %q)", target, linkPath)

	if d.conf.DryRun {
		return nil
	}

	if strings.ContainsRune(alias, '/') {
		if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
			return fmt.Errorf("creating path for symlink %q: %s", linkPath, err)
		}
	}

	d.label.SetCreateLabel(linkPath, unix.S_IFLNK)

	if err := os.Remove(linkPath); err != nil && !os.IsNotExist(err) {
		log.Debugf("removing existing %q: %s", linkPath, err)
	}
	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("symlink(%q, %q): %s", target, linkPath, err)
	}

	return nil
}

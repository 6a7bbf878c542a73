package devd

import (
	"github.com/opencontainers/selinux/go-selinux"
	log "github.com/sirupsen/logrus"
)

// Labeler applies mandatory-access-control labels around node
// creation. Init is called once at the top of a device add and
// Restore on every exit path, bracketing all node-creating
// operations.
type Labeler interface {
	Init() error
	// SetCreateLabel prepares the label for an object about to be
	// created at path with the given mode.
	SetCreateLabel(path string, mode uint32)
	// SetFileLabel relabels an already existing object that is being
	// preserved.
	SetFileLabel(path string, mode uint32)
	Restore()
}

// NopLabeler is the default Labeler, for systems without a security
// subsystem.
type NopLabeler struct{}

var _ Labeler = NopLabeler{}

func (NopLabeler) Init() error { return nil }

func (NopLabeler) SetCreateLabel(string, uint32) {}

func (NopLabeler) SetFileLabel(string, uint32) {}

func (NopLabeler) Restore() {}

// SelinuxLabeler labels created nodes with a fixed file context.
type SelinuxLabeler struct {
	// Context is the SELinux file context to apply to created nodes,
	// e.g. "system_u:object_r:device_t:s0".
	Context string

	enabled bool
}

var _ Labeler = (*SelinuxLabeler)(nil)

func (l *SelinuxLabeler) Init() error {
	l.enabled = selinux.GetEnabled() && l.Context != ""
	return nil
}

func (l *SelinuxLabeler) SetCreateLabel(path string, mode uint32) {
	if !l.enabled {
		return
	}
	if err := selinux.SetFSCreateLabel(l.Context); err != nil {
		log.Debugf("setting create label for %q: %s", path, err)
	}
}

func (l *SelinuxLabeler) SetFileLabel(path string, mode uint32) {
	if !l.enabled {
		return
	}
	if err := selinux.Chcon(path, l.Context, false); err != nil {
		log.Debugf("relabeling %q: %s", path, err)
	}
}

func (l *SelinuxLabeler) Restore() {
	if !l.enabled {
		return
	}
	if err := selinux.SetFSCreateLabel(""); err != nil {
		log.Debugf("restoring create label: %s", err)
	}
}

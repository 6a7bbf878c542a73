// Package devd materializes kernel devices into a userspace /dev
// namespace: it creates the device nodes, partition nodes and symlink
// aliases a naming decision asks for, and renames network interfaces,
// which have no node at all.
package devd

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Conf is the process-wide configuration a Devd works with. It is
// passed in explicitly and never mutated.
type Conf struct {
	// Root is the directory device nodes are created under, usually
	// /dev. Must be an absolute path.
	Root string
	// DryRun makes every mutating operation a no-op that still computes
	// and logs its intended effect.
	DryRun bool
}

// Interface adds devices to the namespace a Devd was configured with.
type Interface interface {
	AddDevice(dev *Device, attrs AttrGetter) error
}

type Devd struct {
	conf  Conf
	namer Namer
	db    Recorder
	label Labeler
	nsPid int
}

var _ Interface = (*Devd)(nil)

type Option func(*Devd)

// WithNamer sets the rule engine deciding device names. Defaults to
// KernelNamer.
func WithNamer(n Namer) Option {
	return func(d *Devd) {
		d.namer = n
	}
}

// WithRecorder sets the database added devices are recorded in for
// later removal. Defaults to no recording.
func WithRecorder(r Recorder) Option {
	return func(d *Devd) {
		d.db = r
	}
}

// WithLabeler sets the security-label subsystem bracketing node
// creation. Defaults to NopLabeler.
func WithLabeler(l Labeler) Option {
	return func(d *Devd) {
		d.label = l
	}
}

// WithNetNsPid makes interface renames happen inside the network
// namespace of the given pid instead of the caller's.
func WithNetNsPid(pid int) Option {
	return func(d *Devd) {
		d.nsPid = pid
	}
}

// New returns a Devd creating nodes under conf.Root.
func New(conf Conf, opts ...Option) *Devd {
	d := &Devd{
		conf:  conf,
		namer: KernelNamer{},
		db:    nopRecorder{},
		label: NopLabeler{},
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// AddDevice processes one device event end to end: extracts the
// device number, applies the naming decision and materializes the
// result, either as filesystem nodes or as a renamed interface. A nil
// return with an untouched device means the device legitimately needed
// nothing, e.g. a bus device without a dev_t.
func (d *Devd) AddDevice(dev *Device, attrs AttrGetter) (err error) {
	if err = d.label.Init(); err != nil {
		return fmt.Errorf("initialising security labels: %s", err)
	}
	defer d.label.Restore()

	switch dev.Class {
	case ClassBlock, ClassChar:
		if err := extractIdentity(dev, attrs); err != nil {
			log.Debugf("no usable dev attribute, doing nothing: %s", err)
			return nil
		}
	}

	if err = d.namer.ResolveName(dev); err != nil {
		return fmt.Errorf("%w: %s", ErrNamingFailed, err)
	}
	log.Debugf("adding %q with name %q", dev.KernelName, dev.Name)

	switch dev.Class {
	case ClassBlock, ClassChar:
		if err = d.createNode(dev); err != nil {
			return
		}

		if e := d.db.Record(dev); e != nil {
			log.Errorf(
				"recording device %q failed, but the node was created anyway, "+
					"remove might not work for custom names: %s", dev.Name, e,
			)
		}

		// the full node path is what consumers get in their environment
		dev.ResolvedPath = filepath.Join(d.conf.Root, dev.Name)
	case ClassNet:
		if dev.Name == dev.KernelName {
			return nil
		}

		if err = d.renameNetIf(dev); err != nil {
			return fmt.Errorf("renaming interface %q to %q: %s", dev.KernelName, dev.Name, err)
		}

		// the original kernel name sleeps with the fishes and the kernel
		// won't send events for it anymore, so rewrite the device path to
		// point at the new name
		if i := strings.LastIndexByte(dev.DevPath, '/'); i != -1 {
			dev.DevPath = dev.DevPath[:i+1] + dev.Name
		}
		dev.ResolvedPath = dev.Name
	}

	return nil
}

type nopRecorder struct{}

func (nopRecorder) Record(*Device) error { return nil }

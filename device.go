package devd

import "errors"

// Class is the kernel class of a device, determining the node type to
// create and whether a device number applies at all.
type Class byte

const (
	ClassBlock Class = 'b'
	ClassChar  Class = 'c'
	// ClassUnix is the odd one out: unix-stream special devices get a
	// character node.
	ClassUnix Class = 'u'
	ClassFifo Class = 'p'
	ClassNet  Class = 'n'
)

var (
	// ErrIdentityUnavailable means the device has no "dev" attribute. Bus
	// devices without a char/block backing legitimately trigger this.
	ErrIdentityUnavailable = errors.New("device number attribute not available")
	// ErrIdentityMalformed means the "dev" attribute exists but is not two
	// colon-separated unsigned integers.
	ErrIdentityMalformed = errors.New("malformed device number attribute")

	ErrUnknownClass    = errors.New("unknown device class")
	ErrNamingFailed    = errors.New("resolving device name")
	ErrNodeCreate      = errors.New("unable to create device node")
	ErrPermissionApply = errors.New("unable to apply permissions to node")
	ErrOwnershipApply  = errors.New("unable to apply ownership to node")
)

// Device describes a single device event end to end: the kernel's view
// of the device on input, the naming decision made by the rule engine,
// and the materialized result on output. One instance per event, owned
// by the caller of AddDevice.
type Device struct {
	// KernelName is the name the kernel assigned to the device.
	KernelName string
	// Name is the resolved target name. Set by the naming engine, may
	// contain subdirectories and may equal KernelName.
	Name string
	// DevPath is the kernel device path, relative to the sysfs mount
	// point. Rewritten exactly once, on a successful interface rename.
	DevPath string
	// Class selects the node type. Only block and char devices carry a
	// device number.
	Class Class
	// Major and Minor are populated by the identity extractor for block
	// and char devices; never for the rest.
	Major uint32
	Minor uint32
	// Mode holds the permission bits requested by the naming decision.
	// The type bits derived from Class are OR'ed in at creation time.
	Mode uint32
	// Owner and Group are raw naming-decision specs: decimal id,
	// symbolic name, or empty for id 0.
	Owner string
	Group string
	// Partitions asks for that many additional nodes at Minor+1..+n,
	// named by appending the partition index. Block devices only.
	Partitions int
	// Symlinks lists the alias names to create, each possibly nested in
	// its own subdirectory.
	Symlinks []string

	// ResolvedPath is the output of a successful add: the absolute node
	// path, or the interface name for renamed network devices. Written
	// at most once.
	ResolvedPath string
}

// AttrGetter exposes the textual kernel attributes of the device being
// added. The sysfs package provides the real implementation.
type AttrGetter interface {
	Attr(name string) (value string, ok bool)
}

// Namer is the external rule engine deciding what a device should be
// called. It fills in Name, Mode, Owner, Group, Partitions and
// Symlinks on the given device.
type Namer interface {
	ResolveName(dev *Device) error
}

// Recorder persists an added device so it can be removed later by its
// custom name. The devdb package provides the real implementation.
type Recorder interface {
	Record(dev *Device) error
}

package devd

// KernelNamer is a Namer that keeps the kernel's name for every
// device, with fixed default permissions and ownership. It stands in
// when no rule engine is configured, making an add behave like a
// plain devfs.
type KernelNamer struct {
	// Mode is the permission bits given to created nodes. Zero means
	// 0600.
	Mode uint32
	// Owner and Group are specs as on Device: decimal, symbolic or
	// empty.
	Owner string
	Group string
}

var _ Namer = KernelNamer{}

func (n KernelNamer) ResolveName(dev *Device) error {
	if dev.Name == "" {
		dev.Name = dev.KernelName
	}
	if dev.Mode == 0 {
		if n.Mode != 0 {
			dev.Mode = n.Mode
		} else {
			dev.Mode = 0600
		}
	}
	if dev.Owner == "" {
		dev.Owner = n.Owner
	}
	if dev.Group == "" {
		dev.Group = n.Group
	}

	return nil
}

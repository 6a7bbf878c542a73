package devd

import (
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
)

// renameNetIf asks the kernel to rename a network interface from its
// kernel name to the resolved name. Network devices have no
// filesystem node; the rename is the whole materialization.
func (d *Devd) renameNetIf(dev *Device) error {
	log.Debugf("changing net interface name from %q to %q", dev.KernelName, dev.Name)
	if d.conf.DryRun {
		return nil
	}

	rename := func() error {
		link, err := netlink.LinkByName(dev.KernelName)
		if err != nil {
			return err
		}
		return netlink.LinkSetName(link, dev.Name)
	}

	if d.nsPid != 0 {
		return execOnNs(d.nsPid, rename)
	}
	return rename()
}

// execOnNs runs f inside the network namespace of the given pid,
// restoring the original namespace afterwards. The OS thread stays
// locked for the duration so no other goroutine observes the switched
// namespace.
func execOnNs(pidns int, f func() error) (err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	origns, err := netns.Get()
	if err != nil {
		return
	}
	defer func() {
		if e := origns.Close(); err == nil && e != nil {
			err = e
		}
	}()

	targetNs, err := netns.GetFromPid(pidns)
	if err != nil {
		return
	}
	defer func() {
		if e := targetNs.Close(); err == nil && e != nil {
			err = e
		}
	}()

	if err = netns.Set(targetNs); err != nil {
		return
	}
	defer func() {
		if e := netns.Set(origns); err == nil && e != nil {
			err = e
		}
	}()

	return f()
}

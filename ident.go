package devd

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// The major/minor of a device is stored in an attribute called "dev",
// in decimal values in the format M:m.
func extractIdentity(dev *Device, attrs AttrGetter) error {
	val, ok := attrs.Attr("dev")
	if !ok {
		return fmt.Errorf("%w: %q", ErrIdentityUnavailable, dev.KernelName)
	}
	log.Debugf("dev=%q", val)

	major, minor, err := parseDevNum(strings.TrimSpace(val))
	if err != nil {
		return err
	}

	dev.Major = major
	dev.Minor = minor
	log.Debugf("found major=%d, minor=%d", major, minor)

	return nil
}

func parseDevNum(val string) (major, minor uint32, err error) {
	parts := strings.Split(val, ":")
	if len(parts) != 2 {
		err = fmt.Errorf("%w: %q", ErrIdentityMalformed, val)
		return
	}

	m, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrIdentityMalformed, val)
		return
	}
	n, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrIdentityMalformed, val)
		return
	}

	major = uint32(m)
	minor = uint32(n)
	return
}

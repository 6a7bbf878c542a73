package devd

import (
	"fmt"
	"os/user"
	"strconv"
)

// resolveUser turns an owner spec into a numeric uid. An empty spec
// means uid 0. A spec that parses fully as a decimal number is used
// as-is, without checking that such a user exists. Anything else is
// looked up by name; on lookup failure the returned uid is 0 and the
// error describes the failed lookup so the caller can log the
// fallback instead of failing the whole add.
func resolveUser(spec string) (uint32, error) {
	if spec == "" {
		return 0, nil
	}

	if id, err := strconv.ParseUint(spec, 10, 32); err == nil {
		return uint32(id), nil
	}

	u, err := user.Lookup(spec)
	if err != nil {
		return 0, fmt.Errorf("specified user unknown %q: %s", spec, err)
	}

	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("non-numeric uid %q for user %q", u.Uid, spec)
	}

	return uint32(uid), nil
}

// resolveGroup is resolveUser for group specs.
func resolveGroup(spec string) (uint32, error) {
	if spec == "" {
		return 0, nil
	}

	if id, err := strconv.ParseUint(spec, 10, 32); err == nil {
		return uint32(id), nil
	}

	g, err := user.LookupGroup(spec)
	if err != nil {
		return 0, fmt.Errorf("specified group unknown %q: %s", spec, err)
	}

	gid, err := strconv.ParseUint(g.Gid, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("non-numeric gid %q for group %q", g.Gid, spec)
	}

	return uint32(gid), nil
}

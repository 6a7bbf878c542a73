package devd

import (
	"os/user"
	"strconv"
	"testing"
)

func TestResolveUserNumeric(t *testing.T) {
	testsSet := []struct {
		Description string
		Spec        string
		Expected    uint32
	}{
		{Description: "empty means 0", Spec: "", Expected: 0},
		{Description: "zero", Spec: "0", Expected: 0},
		// purely numeric specs are used as-is, existing or not
		{Description: "plain number", Spec: "1234", Expected: 1234},
		{Description: "large id", Spec: "65534", Expected: 65534},
	}

	for _, test := range testsSet {
		uid, err := resolveUser(test.Spec)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", test.Description, err)
			continue
		}
		if uid != test.Expected {
			t.Errorf("%s: expected %d, got %d", test.Description, test.Expected, uid)
		}
	}
}

func TestResolveUserSymbolic(t *testing.T) {
	current, err := user.Current()
	if err != nil {
		t.Skipf("cannot determine current user: %s", err)
	}

	uid, err := resolveUser(current.Username)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected, _ := strconv.ParseUint(current.Uid, 10, 32)
	if uid != uint32(expected) {
		t.Errorf("expected %d, got %d", expected, uid)
	}
}

func TestResolveUserUnknownFallsBack(t *testing.T) {
	uid, err := resolveUser("no_such_user_devd_test")
	if err == nil {
		t.Error("expected a lookup error for an unknown user")
	}
	if uid != 0 {
		t.Errorf("fallback uid must be 0, got %d", uid)
	}

	// trailing junk makes a spec symbolic, not numeric
	uid, err = resolveUser("123abc")
	if err == nil {
		t.Error("expected a lookup error for a non-numeric spec")
	}
	if uid != 0 {
		t.Errorf("fallback uid must be 0, got %d", uid)
	}
}

func TestResolveGroup(t *testing.T) {
	gid, err := resolveGroup("")
	if err != nil || gid != 0 {
		t.Errorf("empty spec: expected 0, got %d (err %v)", gid, err)
	}

	gid, err = resolveGroup("512")
	if err != nil || gid != 512 {
		t.Errorf("numeric spec: expected 512, got %d (err %v)", gid, err)
	}

	gid, err = resolveGroup("no_such_group_devd_test")
	if err == nil {
		t.Error("expected a lookup error for an unknown group")
	}
	if gid != 0 {
		t.Errorf("fallback gid must be 0, got %d", gid)
	}
}

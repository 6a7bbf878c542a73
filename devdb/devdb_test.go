package devdb

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cprates/devd"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "devices.db"))
	if err != nil {
		t.Fatalf("opening database: %s", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndLookup(t *testing.T) {
	db := openTestDB(t)

	dev := &devd.Device{
		KernelName: "sda",
		Name:       "disks/main",
		DevPath:    "/block/sda",
		Class:      devd.ClassBlock,
		Major:      8,
		Minor:      0,
		Partitions: 2,
		Symlinks:   []string{"disk", "by-id/main"},
	}

	if err := db.Record(dev); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := &Record{
		Name:       "disks/main",
		KernelName: "sda",
		DevPath:    "/block/sda",
		Class:      "b",
		Major:      8,
		Minor:      0,
		Partitions: 2,
		Symlinks:   []string{"disk", "by-id/main"},
	}

	got, err := db.LookupByDevPath("/block/sda")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %+v, got %+v", expected, got)
	}

	got, err = db.LookupByName("disks/main")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %+v, got %+v", expected, got)
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	dev := &devd.Device{
		KernelName: "test",
		Name:       "misc/test",
		DevPath:    "/class/misc/test",
		Class:      devd.ClassChar,
		Major:      10,
		Minor:      200,
	}

	// event redelivery records the same device again
	if err := db.Record(dev); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	dev.Minor = 201
	if err := db.Record(dev); err != nil {
		t.Fatalf("unexpected error on re-record: %s", err)
	}

	got, err := db.LookupByName("misc/test")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Minor != 201 {
		t.Errorf("re-record must update the entry, got minor %d", got.Minor)
	}
}

func TestRemove(t *testing.T) {
	db := openTestDB(t)

	dev := &devd.Device{
		KernelName: "test",
		Name:       "misc/test",
		DevPath:    "/class/misc/test",
		Class:      devd.ClassChar,
	}
	if err := db.Record(dev); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if err := db.Remove("misc/test"); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, err := db.LookupByName("misc/test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}

	if err := db.Remove("misc/test"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound removing twice, got %v", err)
	}
}

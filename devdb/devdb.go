// Package devdb keeps a persistent record of materialized devices so
// a later remove can find the node belonging to a device path even
// when the naming decision gave it a custom name.
package devdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cprates/devd"
)

// DefaultPath is the default database location.
const DefaultPath = "/var/lib/devd/devices.db"

var ErrNotFound = errors.New("device not found")

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

var _ devd.Recorder = (*DB)(nil)

// Record is one persisted device entry.
type Record struct {
	Name       string
	KernelName string
	DevPath    string
	Class      string
	Major      uint32
	Minor      uint32
	Partitions int
	Symlinks   []string
}

// Open opens or creates the database at the given path, creating the
// parent directory as needed.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS devices (
			name TEXT PRIMARY KEY,
			kernel_name TEXT NOT NULL,
			devpath TEXT NOT NULL,
			class TEXT NOT NULL,
			major INTEGER NOT NULL DEFAULT 0,
			minor INTEGER NOT NULL DEFAULT 0,
			partitions INTEGER NOT NULL DEFAULT 0,
			symlinks TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_devices_devpath ON devices(devpath);
	`)
	return err
}

// Record persists one added device, replacing any previous entry with
// the same name. A device re-added after an event redelivery must not
// fail here.
func (d *DB) Record(dev *devd.Device) error {
	_, err := d.conn.Exec(`
		INSERT INTO devices (name, kernel_name, devpath, class, major, minor, partitions, symlinks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			kernel_name = excluded.kernel_name,
			devpath = excluded.devpath,
			class = excluded.class,
			major = excluded.major,
			minor = excluded.minor,
			partitions = excluded.partitions,
			symlinks = excluded.symlinks,
			added_at = CURRENT_TIMESTAMP
	`,
		dev.Name, dev.KernelName, dev.DevPath, string(dev.Class),
		dev.Major, dev.Minor, dev.Partitions, strings.Join(dev.Symlinks, " "),
	)
	if err != nil {
		return fmt.Errorf("recording device %q: %w", dev.Name, err)
	}

	return nil
}

// LookupByDevPath returns the record of the device at the given
// kernel device path.
func (d *DB) LookupByDevPath(devpath string) (*Record, error) {
	row := d.conn.QueryRow(`
		SELECT name, kernel_name, devpath, class, major, minor, partitions, symlinks
		FROM devices WHERE devpath = ?
	`, devpath)

	return scanRecord(row)
}

// LookupByName returns the record of the device with the given
// resolved name.
func (d *DB) LookupByName(name string) (*Record, error) {
	row := d.conn.QueryRow(`
		SELECT name, kernel_name, devpath, class, major, minor, partitions, symlinks
		FROM devices WHERE name = ?
	`, name)

	return scanRecord(row)
}

// Remove drops the record of the device with the given resolved name.
func (d *DB) Remove(name string) error {
	res, err := d.conn.Exec("DELETE FROM devices WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("removing device %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return nil
}

func scanRecord(row *sql.Row) (*Record, error) {
	var r Record
	var symlinks string
	err := row.Scan(
		&r.Name, &r.KernelName, &r.DevPath, &r.Class,
		&r.Major, &r.Minor, &r.Partitions, &symlinks,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if symlinks != "" {
		r.Symlinks = strings.Fields(symlinks)
	}

	return &r, nil
}

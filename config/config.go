// Package config loads the flat key = value configuration file shared by
// the naming server and storage server binaries.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultBaseDirectoryPath is where naming-server and storage-server store
// configuration and registration bookkeeping. It defaults to $NSFS_BASE if
// set, otherwise $HOME/lib/nsfs. Commands override this via the -base flag.
var DefaultBaseDirectoryPath string

func init() {
	if base := os.Getenv("NSFS_BASE"); base != "" {
		DefaultBaseDirectoryPath = base
	} else {
		DefaultBaseDirectoryPath = os.ExpandEnv("$HOME/lib/nsfs")
	}
}

// C holds the settings common to both binaries; fields not relevant to a
// given role are simply left at their zero value.
type C struct {
	// ServiceListenNet/ServiceListenAddr is where the naming server listens
	// for client Service calls (spec §6 "one well-known port").
	ServiceListenNet  string
	ServiceListenAddr string

	// RegistrationListenNet/RegistrationListenAddr is where the naming
	// server listens for storage-server Registration calls (the other
	// well-known port).
	RegistrationListenNet  string
	RegistrationListenAddr string

	// NamingRegistrationNet/NamingRegistrationAddr is the naming server's
	// registration address a storage server dials to register itself.
	NamingRegistrationNet  string
	NamingRegistrationAddr string

	// StorageListenNet/StorageListenAddr is where a storage server exposes
	// its own Storage and Command interfaces.
	StorageListenNet  string
	StorageListenAddr string

	// RootDirectory is where a storage server keeps file bytes on local
	// disk.
	RootDirectory string

	// ReplicationFactor is alpha in the replication controller's desired
	// replica count formula (spec §4.E). Defaults to 0.3.
	ReplicationFactor float64

	// Storage selects the byte-backing for a storage server's local
	// FileStore: "disk" (default) or "s3" for an additional best-effort S3
	// mirror layered on top of local disk.
	Storage string

	// These only make sense if Storage is "s3". The AWS profile supplies
	// credentials.
	S3Profile string
	S3Region  string
	S3Bucket  string

	base string
}

const defaultReplicationFactor = 0.3

// Load loads the configuration from the file called "config" in base.
func Load(base string) (*C, error) {
	filename := filepath.Join(base, "config")
	fi, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if fi.Mode()&0077 != 0 {
		return nil, fmt.Errorf("config.Load %q: mode is %#o, want at most %#o",
			filename, fi.Mode()&0777, fi.Mode()&0700)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	c, err := load(f)
	if err != nil {
		return nil, err
	}
	c.base = base
	if c.RootDirectory != "" && !filepath.IsAbs(c.RootDirectory) {
		c.RootDirectory = filepath.Clean(filepath.Join(base, c.RootDirectory))
	}
	if c.ReplicationFactor == 0 {
		c.ReplicationFactor = defaultReplicationFactor
	}
	if c.NamingRegistrationNet == "" {
		c.NamingRegistrationNet = "tcp"
	}
	return c, nil
}

func load(f io.Reader) (*C, error) {
	c := C{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		i := strings.IndexAny(line, " \t")
		if i == -1 {
			return nil, fmt.Errorf("load: no separator in %q", line)
		}
		key, val := line[:i], strings.TrimSpace(line[i:])
		switch key {
		case "service-listen-net":
			c.ServiceListenNet = val
		case "service-listen-addr":
			c.ServiceListenAddr = val
		case "registration-listen-net":
			c.RegistrationListenNet = val
		case "registration-listen-addr":
			c.RegistrationListenAddr = val
		case "naming-registration-net":
			c.NamingRegistrationNet = val
		case "naming-registration-addr":
			c.NamingRegistrationAddr = val
		case "storage-listen-net":
			c.StorageListenNet = val
		case "storage-listen-addr":
			c.StorageListenAddr = val
		case "root-directory":
			c.RootDirectory = val
		case "replication-factor":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("load: %w", err)
			}
			c.ReplicationFactor = f
		case "storage":
			c.Storage = val
		case "s3-bucket":
			c.S3Bucket = val
		case "s3-profile":
			c.S3Profile = val
		case "s3-region":
			c.S3Region = val
		default:
			return nil, fmt.Errorf("load: unknown key %q", key)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return &c, nil
}

// RegistrationLogPath is where a storage server remembers that it
// registered already, so it can avoid AlreadyRegistered on a simple
// restart against the same naming server (the naming server itself keeps
// no state across restarts; spec.md §6 "Persisted state: None").
func (c *C) RegistrationLogPath() string {
	return filepath.Join(c.base, "registration.log")
}

package redaction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileLease is a coarse single-writer guard backed by a JSON lease file.
// Two processes sharing one storage location must never save concurrently;
// the lease makes the scheduled sweep honor that precondition.
type FileLease struct {
	path string
}

type leaseRecord struct {
	Owner   string `json:"owner"`
	Expires int64  `json:"expires_unix_nano"`
}

// NewFileLease returns a lease rooted in dir.
func NewFileLease(dir string) *FileLease {
	return &FileLease{path: filepath.Join(dir, "sweep.lease")}
}

// Acquire takes the lease for owner with the given TTL. It returns false
// without error when a different owner holds an unexpired lease.
func (l *FileLease) Acquire(owner string, ttl time.Duration) (bool, error) {
	if owner == "" {
		return false, fmt.Errorf("empty lease owner")
	}
	if cur, err := l.read(); err == nil {
		if cur.Owner != owner && time.Now().UnixNano() < cur.Expires {
			return false, nil
		}
	}
	return true, l.write(owner, ttl)
}

// Renew extends the lease; only the current owner may renew.
func (l *FileLease) Renew(owner string, ttl time.Duration) error {
	cur, err := l.read()
	if err != nil {
		return fmt.Errorf("lease not held: %w", err)
	}
	if cur.Owner != owner {
		return fmt.Errorf("lease held by %s, not %s", cur.Owner, owner)
	}
	return l.write(owner, ttl)
}

// Release drops the lease; releasing an expired or foreign lease is an error.
func (l *FileLease) Release(owner string) error {
	cur, err := l.read()
	if err != nil {
		return fmt.Errorf("lease not held: %w", err)
	}
	if cur.Owner != owner {
		return fmt.Errorf("lease held by %s, not %s", cur.Owner, owner)
	}
	return os.Remove(l.path)
}

func (l *FileLease) read() (leaseRecord, error) {
	var rec leaseRecord
	b, err := os.ReadFile(l.path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// write lands the lease via a temp file and rename, so a crashed writer
// never leaves a truncated lease behind.
func (l *FileLease) write(owner string, ttl time.Duration) error {
	rec := leaseRecord{Owner: owner, Expires: time.Now().Add(ttl).UnixNano()}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, l.path)
}

package eventlog

import (
	"fmt"
	"os"
)

// rotatingFile appends lines to a file, archiving it under numbered
// backups (name.log.1 is the newest archive) once a write would push it
// past maxBytes. Historical files are renamed, never rewritten.
type rotatingFile struct {
	path     string
	maxBytes int64
	backups  int
	file     *os.File
	size     int64
}

func openRotatingFile(path string, maxBytes int64, backups int) (*rotatingFile, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &rotatingFile{
		path:     path,
		maxBytes: maxBytes,
		backups:  backups,
		file:     f,
		size:     info.Size(),
	}, nil
}

// Write appends p, rotating first if the file would exceed maxBytes.
// An oversized single record still gets written to a fresh file.
func (r *rotatingFile) Write(p []byte) error {
	if r.maxBytes > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxBytes {
		if err := r.rotate(); err != nil {
			return err
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return err
}

// rotate archives the active file as path.1, shifting older archives up
// and discarding the one past the backup count.
func (r *rotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}

	if r.backups > 0 {
		os.Remove(r.backupName(r.backups))
		for i := r.backups - 1; i >= 1; i-- {
			src := r.backupName(i)
			if _, err := os.Stat(src); err == nil {
				os.Rename(src, r.backupName(i+1))
			}
		}
		if err := os.Rename(r.path, r.backupName(1)); err != nil {
			return err
		}
	} else {
		// No backups retained: start over in place.
		if err := os.Remove(r.path); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = 0
	return nil
}

func (r *rotatingFile) backupName(i int) string {
	return fmt.Sprintf("%s.%d", r.path, i)
}

func (r *rotatingFile) Close() error {
	return r.file.Close()
}

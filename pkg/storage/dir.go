package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirVolume is a Volume backed by a directory, typically the kernel
// mount point of the removable medium. Probe treats a missing or
// unreadable directory as "medium not present", which is what hot
// unplug looks like from here.
type DirVolume struct {
	Dir string
}

// Probe implements Volume.
func (v *DirVolume) Probe() error {
	info, err := os.Stat(v.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", v.Dir)
	}
	return nil
}

// Open implements Volume.
func (v *DirVolume) Open(name string) (File, error) {
	f, err := os.OpenFile(filepath.Join(v.Dir, name),
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &osFile{f}, nil
}

type osFile struct {
	*os.File
}

func (f *osFile) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

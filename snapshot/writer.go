package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
)

const fileName = "snapshot.bin"

// PathIn returns the snapshot file location inside dir.
func PathIn(dir string) string {
	return filepath.Join(dir, fileName)
}

type Writer struct {
	Dir string
}

// Write persists the snapshot atomically: encode to a temp file, fsync,
// then rename over the previous snapshot.
func (w *Writer) Write(s Snapshot) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.Dir, fileName+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&s); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), PathIn(w.Dir))
}

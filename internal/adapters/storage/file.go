package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alejandrodnm/polysim/internal/domain"
)

const (
	defaultProfile = "Default"
	baseFileName   = "bets.json"
	filePrefix     = "bets_"
	fileSuffix     = ".json"
)

// FileName devuelve el nombre de archivo de un perfil: bets.json para el
// perfil por defecto, bets_<perfil>.json para el resto.
func FileName(profile string) string {
	if profile == "" || profile == defaultProfile {
		return baseFileName
	}
	return filePrefix + profile + fileSuffix
}

// FileStorage keeps one pretty-printed JSON document per profile.
type FileStorage struct {
	path string
}

// NewFileStorage crea el backend para el archivo dado. El directorio se crea
// en el primer Save si no existe.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the document location.
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Load(_ context.Context) (domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.FileStorage.Load: read %q: %w", s.path, err)
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.FileStorage.Load: %q: %w", s.path, err)
	}
	return snap, nil
}

// Save escribe a un archivo temporal y lo renombra: un fallo a mitad de
// escritura nunca deja el documento anterior truncado.
func (s *FileStorage) Save(_ context.Context, snap domain.Snapshot) error {
	data, err := encodeSnapshot(snap, true)
	if err != nil {
		return fmt.Errorf("storage.FileStorage.Save: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage.FileStorage.Save: mkdir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".polysim-*.tmp")
	if err != nil {
		return fmt.Errorf("storage.FileStorage.Save: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("storage.FileStorage.Save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage.FileStorage.Save: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("storage.FileStorage.Save: rename to %q: %w", s.path, err)
	}
	return nil
}

// ListProfiles scans the document directory for bets*.json files.
func (s *FileStorage) ListProfiles(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(s.path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.FileStorage.ListProfiles: %w", err)
	}

	var profiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case name == baseFileName:
			profiles = append(profiles, defaultProfile)
		case strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix):
			p := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
			if p != "" {
				profiles = append(profiles, p)
			}
		}
	}
	sort.Strings(profiles)
	return profiles, nil
}

func (s *FileStorage) Close() error { return nil }

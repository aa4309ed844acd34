// Package backup snapshots the SQLite database and ships it to object storage.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/database"
)

const (
	keyPrefix       = "vmi-backup-"
	keySuffix       = ".tar.gz"
	timestampLayout = "2006-01-02-150405"
	snapshotName    = "vmi_primary.db"
	metadataName    = "backup-metadata.json"
)

// Object is a stored backup archive
type Object struct {
	Key       string
	SizeBytes int64
}

// Store is the object storage the archives go to
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Metadata is written into every archive next to the snapshot
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
}

// Info describes a backup found in the store
type Info struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"sizeBytes"`
	AgeHours  int64     `json:"ageHours"`
}

// Service creates database snapshots and uploads them
type Service struct {
	db       *database.DB
	store    Store
	stageDir string
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates a backup service staging archives under stageDir
func NewService(db *database.DB, store Store, stageDir string, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		store:    store,
		stageDir: stageDir,
		log:      log.With().Str("service", "backup").Logger(),
		now:      time.Now,
	}
}

// Run snapshots the database, archives it and uploads the archive.
// Returns the object key.
func (s *Service) Run(ctx context.Context) (string, error) {
	if s.db.Dialect() != database.DialectSQLite {
		return "", fmt.Errorf("backups are only supported for sqlite, got %s", s.db.Dialect())
	}

	start := s.now()
	s.log.Info().Msg("Starting backup")

	if err := os.MkdirAll(s.stageDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	staging, err := os.MkdirTemp(s.stageDir, "backup-staging-")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	snapshotPath := filepath.Join(staging, snapshotName)
	if err := s.snapshot(ctx, snapshotPath); err != nil {
		return "", err
	}

	info, err := os.Stat(snapshotPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat snapshot: %w", err)
	}
	checksum, err := fileChecksum(snapshotPath)
	if err != nil {
		return "", err
	}

	meta := Metadata{
		Timestamp: start.UTC(),
		Database:  s.db.Name(),
		Filename:  snapshotName,
		SizeBytes: info.Size(),
		Checksum:  checksum,
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, metadataName), metaBytes, 0644); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	key := keyPrefix + start.UTC().Format(timestampLayout) + keySuffix
	archivePath := filepath.Join(staging, key)
	if err := createArchive(archivePath, staging, []string{snapshotName, metadataName}); err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if err := s.store.Upload(ctx, key, archive); err != nil {
		return "", err
	}

	s.log.Info().
		Str("key", key).
		Int64("size_bytes", info.Size()).
		Dur("duration", s.now().Sub(start)).
		Msg("Backup completed")

	return key, nil
}

// List returns the stored backups, newest first
func (s *Service) List(ctx context.Context) ([]Info, error) {
	objects, err := s.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}

	now := s.now()
	backups := make([]Info, 0, len(objects))
	for _, obj := range objects {
		ts, ok := parseKey(obj.Key)
		if !ok {
			s.log.Warn().Str("key", obj.Key).Msg("Skipping object with unexpected name")
			continue
		}
		backups = append(backups, Info{
			Key:       obj.Key,
			Timestamp: ts,
			SizeBytes: obj.SizeBytes,
			AgeHours:  int64(now.Sub(ts).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// snapshot writes a consistent copy of the live database to path
func (s *Service) snapshot(ctx context.Context, path string) error {
	quoted := strings.ReplaceAll(path, "'", "''")
	if _, err := s.db.Conn().ExecContext(ctx, "VACUUM INTO '"+quoted+"'"); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

func parseKey(key string) (time.Time, bool) {
	if !strings.HasPrefix(key, keyPrefix) || !strings.HasSuffix(key, keySuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), keySuffix)
	ts, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func createArchive(archivePath, dir string, names []string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, name := range names {
		if err := addFile(tw, filepath.Join(dir, name), name); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

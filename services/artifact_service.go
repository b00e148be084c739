package services

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrArtifactWrite is returned when an upload could not be stored. The
// caller must not assume the previous artifact of the slot was removed.
var ErrArtifactWrite = errors.New("artifact_write_failed")

// ArtifactStore stores uploaded binary objects behind opaque locators.
type ArtifactStore interface {
	// Put stores data and returns a durable locator for it.
	Put(data []byte, contentType, originalName, dir string) (string, error)
	// Delete removes the object behind locator. A missing object is not an
	// error; any other failure is returned so the caller can log it, but
	// callers treat deletion as best-effort.
	Delete(locator string) error
}

// DiskArtifactStore keeps artifacts under a root directory that the router
// serves statically at /uploads.
type DiskArtifactStore struct {
	Root string
}

func NewDiskArtifactStore(root string) *DiskArtifactStore {
	if strings.TrimSpace(root) == "" {
		root = "uploads"
	}
	return &DiskArtifactStore{Root: root}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFileName strips path separators and anything else that has no
// business in a stored file name.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	return name
}

func extensionFor(contentType, originalName string) string {
	if ext := filepath.Ext(originalName); ext != "" {
		return ""
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Put writes data under <root>/<dir>/<unixnano>-<uuid8>-<name>. The dir is
// derived by the caller from (bookingToken, slot), so an auditor can walk a
// booking's objects from the token alone; the time/uuid prefix keeps
// resubmissions of the same file from colliding.
func (s *DiskArtifactStore) Put(data []byte, contentType, originalName, dir string) (string, error) {
	name := sanitizeFileName(originalName)
	name += extensionFor(contentType, name)

	rel := filepath.Join(dir, fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), uuid.NewString()[:8], name))
	full := filepath.Join(s.Root, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("%w: mkdir: %v", ErrArtifactWrite, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write: %v", ErrArtifactWrite, err)
	}

	return filepath.ToSlash(rel), nil
}

// Delete removes the object. "Already absent" counts as success so retried
// deletes stay idempotent.
func (s *DiskArtifactStore) Delete(locator string) error {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil
	}
	full := filepath.Join(s.Root, filepath.FromSlash(locator))
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// deleteArtifactQuietly is the shared best-effort delete: storage hygiene is
// secondary to record correctness, so failures are only logged.
func deleteArtifactQuietly(store ArtifactStore, locator string) {
	if locator == "" {
		return
	}
	if err := store.Delete(locator); err != nil {
		log.Printf("warning: failed to delete artifact %s: %v", locator, err)
	}
}

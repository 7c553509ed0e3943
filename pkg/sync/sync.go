package sync

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Cellebyte/mpsync/pkg/errors"
	"github.com/Cellebyte/mpsync/pkg/remote"
)

// Sync recursively mirrors `dir` onto the board. An empty dir starts from
// the configured folder.
//
// Entries are processed in the order the filesystem reports them: folders
// are created before their contents are visited, files are uploaded
// unconditionally, and everything else (symlinks, devices, sockets) is
// skipped. The first remote error aborts the remaining walk.
func (s *Session) Sync(dir string) error {
	explorer, err := s.activeExplorer()
	if err != nil {
		return err
	}

	if dir == "" {
		dir = s.config.Folder
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return errors.WithContext(err, fmt.Sprintf("list %q", dir))
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if err := s.createFolder(explorer, path); err != nil {
				return err
			}
			if err := s.Sync(path); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if err := s.copyFile(explorer, path); err != nil {
				return err
			}
		default:
			// Symlinks are reported as symlinks here, not as what they point
			// to, so a symlinked folder is skipped rather than traversed.
			log.WithField("path", path).Debug("Skipping irregular file")
		}
	}
	return nil
}

// Delete removes the board path corresponding to the given local path. The
// one-shot sync never calls it: files that disappear locally stay on the
// board until a change-driven mode takes over deletion.
func (s *Session) Delete(localPath string) error {
	explorer, err := s.activeExplorer()
	if err != nil {
		return err
	}

	dst, err := s.remotePath(localPath)
	if err != nil {
		return err
	}

	log.Infof("Deleting %s", dst)
	if err := explorer.Remove(dst); err != nil {
		return errors.WithContext(err, fmt.Sprintf("delete %q", dst))
	}
	return nil
}

func (s *Session) copyFile(explorer remote.Explorer, path string) error {
	dst, err := s.remotePath(path)
	if err != nil {
		return err
	}

	log.Infof("Copying %s", dst)
	if err := explorer.Put(path, dst); err != nil {
		return errors.WithContext(err, fmt.Sprintf("copy %q", dst))
	}
	return nil
}

func (s *Session) createFolder(explorer remote.Explorer, path string) error {
	dst, err := s.remotePath(path)
	if err != nil {
		return err
	}

	log.Infof("Creating folder %s", dst)
	if err := explorer.Mkdir(dst); err != nil {
		if remote.IsAlreadyExists(err) {
			log.WithField("path", dst).Debug("Folder already exists on the board")
			return nil
		}
		return errors.WithContext(err, fmt.Sprintf("create folder %q", dst))
	}
	return nil
}

// remotePath maps a local path to its path on the board by relativizing it
// against the configured folder. Paths outside the folder are rejected.
func (s *Session) remotePath(path string) (string, error) {
	rel, err := filepath.Rel(s.config.Folder, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q is outside the sync folder %q",
			path, s.config.Folder)
	}
	return "/" + filepath.ToSlash(rel), nil
}

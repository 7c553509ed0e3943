package remote

import (
	"crypto/sha512"
	"encoding/base64"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// cachingExplorer wraps an Explorer and skips uploads whose contents are
// byte-identical to what was last uploaded to the same remote path. It's
// purely a transfer optimization: from the sync engine's point of view it
// behaves exactly like the wrapped Explorer.
//
// The cache only remembers what this process uploaded. It never queries the
// board, so the first upload of each file always goes through.
type cachingExplorer struct {
	Explorer
	uploaded map[string]string
}

// WithCache wraps an Explorer with content caching.
func WithCache(explorer Explorer) Explorer {
	return &cachingExplorer{
		Explorer: explorer,
		uploaded: map[string]string{},
	}
}

func (c *cachingExplorer) Put(localPath, remotePath string) error {
	hash, err := hashFile(localPath)
	if err != nil {
		// Hashing is best effort. Fall back to an unconditional upload and
		// let the wrapped Explorer report any real problem with the file.
		log.WithError(err).WithField("path", localPath).Debug(
			"Failed to hash file, uploading unconditionally")
		delete(c.uploaded, remotePath)
		return c.Explorer.Put(localPath, remotePath)
	}

	if cached, ok := c.uploaded[remotePath]; ok && cached == hash {
		log.WithField("path", remotePath).Debug("Contents unchanged, skipping upload")
		return nil
	}

	if err := c.Explorer.Put(localPath, remotePath); err != nil {
		// The upload may have partially completed, so the cached state is
		// unknown.
		delete(c.uploaded, remotePath)
		return err
	}

	c.uploaded[remotePath] = hash
	return nil
}

func (c *cachingExplorer) Remove(remotePath string) error {
	delete(c.uploaded, remotePath)
	return c.Explorer.Remove(remotePath)
}

// hashFile returns the sha512 hash of the file at the given path.
func hashFile(path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha512.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}

package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/darmiel/verdict/internal/config"
	"github.com/darmiel/verdict/internal/logging"
)

var _ Fetcher = (*FileFetcher)(nil)

// FileFetcher reads a ruleset from a local file. It remembers the digest of
// the last successfully parsed content and reports ErrUnchanged while it stays the same.
type FileFetcher struct {
	Path string

	mu         sync.Mutex
	lastDigest string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

func (f *FileFetcher) Fetch(ctx context.Context, log logging.InternalLogger) (*config.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset: %w", err)
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	f.mu.Lock()
	defer f.mu.Unlock()

	if digest == f.lastDigest {
		return nil, ErrUnchanged
	}

	log.Info("ruleset '%s' changed (sha256 %s)", f.Path, digest[:12])
	cfg, err := config.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ruleset '%s': %w", f.Path, err)
	}
	f.lastDigest = digest
	return cfg, nil
}

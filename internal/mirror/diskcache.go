package mirror

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mirrorproxy/flexo/internal/cache"
)

// InitializeCache walks cacheDir and reports every file found as a cached
// (or partially cached) order, so a freshly started process doesn't treat
// everything already on disk as a cache miss. A ".size" sidecar file,
// written atomically by HTTPJob on completion, marks a download as
// complete; its absence means the file is assumed to be a resumable
// partial download.
func InitializeCache(cacheDir string) (map[cache.Order]cache.OrderState, error) {
	states := make(map[cache.Order]cache.OrderState)
	var totalBytes uint64
	var fileCount int

	err := filepath.WalkDir(cacheDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == cacheDir {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".size") || strings.HasSuffix(path, ".size.tmp") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(cacheDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		cachedSize := uint64(info.Size())
		item := cache.CachedItem{CachedSize: cachedSize}
		if completeSize, ok := readSizeSidecar(path); ok {
			item.CompleteSize = completeSize
			item.CompleteSizeKnown = true
		}

		order := HTTPOrder{Path: relPath, Cacheable: true, CacheDir: cacheDir}
		states[order] = cache.OrderState{Kind: cache.StateCached, Item: item}

		totalBytes += cachedSize
		fileCount++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mirror: scan cache dir %s: %w", cacheDir, err)
	}

	log.Printf("mirror: cache dir %s contains %d orders (%s)", cacheDir, fileCount, humanize.Bytes(totalBytes))
	return states, nil
}

func readSizeSidecar(destPath string) (uint64, bool) {
	data, err := os.ReadFile(destPath + ".size")
	if err != nil {
		return 0, false
	}
	size, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return size, true
}

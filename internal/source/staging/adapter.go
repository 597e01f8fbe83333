package staging

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/source"
)

// ManifestFileName is the JSONL file each staging directory must contain.
const ManifestFileName = "manifest.jsonl"

// maxLineBytes bounds a single manifest line.
const maxLineBytes = 1 << 20

// Adapter serves trending templates from <basePath>/<name>/manifest.jsonl,
// one source.TrendingItem per line. It lets a feed be seeded offline.
type Adapter struct {
	dir  string
	name string
}

// NewAdapter returns an Adapter for the staging directory basePath/name.
func NewAdapter(basePath, name string) *Adapter {
	return &Adapter{dir: filepath.Join(basePath, name), name: name}
}

func (a *Adapter) GetSourceID() string {
	return "staging:" + a.name
}

func (a *Adapter) GetDisplayName() string {
	return fmt.Sprintf("Staging (%s)", a.name)
}

// FetchTrending decodes the manifest in order. Blank lines, malformed JSON,
// entries missing an id or url, and repeated ids are skipped.
func (a *Adapter) FetchTrending(ctx context.Context) ([]source.TrendingItem, error) {
	path := filepath.Join(a.dir, ManifestFileName)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("manifest file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	items := []source.TrendingItem{}
	seen := make(map[string]struct{})
	skipped := 0
	for lineNo := 1; scanner.Scan(); lineNo++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item source.TrendingItem
		if err := json.Unmarshal([]byte(line), &item); err != nil || item.ID == "" || item.URL == "" {
			skipped++
			continue
		}
		if _, dup := seen[item.ID]; dup {
			skipped++
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}

	if skipped > 0 {
		logger.With(logger.Fields{
			logger.FieldSource: a.GetSourceID(),
			"skipped":          skipped,
		}).Warn(ctx, "Skipped unusable manifest lines")
	}
	return items, nil
}

// ListStagingSources returns the sorted names of sub-directories of basePath
// that hold a manifest. A missing basePath yields an empty list.
func ListStagingSources(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(basePath, entry.Name(), ManifestFileName)); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

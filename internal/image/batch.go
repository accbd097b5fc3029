package image

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pixenhq/pixen/internal/message"
)

// MaxBatchSize caps how many images one attach command may pull in.
const MaxBatchSize = 8

// LoadBatch expands a glob pattern (doublestar syntax, so "shots/**/*.png"
// works) and loads every matched image file. The batch is all-or-none: if
// any matched file fails to load, nothing is returned. Callers expose the
// result as pending images only once the whole batch is in.
func LoadBatch(pattern string) ([]message.ImageRef, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var paths []string
	for _, m := range matches {
		if IsImageFile(m) {
			paths = append(paths, m)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images match %q", pattern)
	}
	if len(paths) > MaxBatchSize {
		return nil, fmt.Errorf("%d images match %q (max %d per attach)", len(paths), pattern, MaxBatchSize)
	}
	sort.Strings(paths)

	refs := make([]message.ImageRef, 0, len(paths))
	for _, p := range paths {
		info, err := Load(p)
		if err != nil {
			return nil, err
		}
		refs = append(refs, info.ToRef())
	}
	return refs, nil
}

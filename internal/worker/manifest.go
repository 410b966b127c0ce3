package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clipforge/video-transcoder/internal/models"
)

const MasterPlaylistName = "master.m3u8"

// WriteMasterPlaylist writes the top-level playlist referencing every variant
// playlist by nominal bandwidth, highest first. Ordering is deterministic so
// repeated runs of the same job produce identical manifests.
func WriteMasterPlaylist(outputDir string, variants []models.Variant) (string, error) {
	if len(variants) == 0 {
		return "", fmt.Errorf("no variants to list in master playlist")
	}

	sorted := make([]models.Variant, len(variants))
	copy(sorted, variants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Bandwidth() != sorted[j].Bandwidth() {
			return sorted[i].Bandwidth() > sorted[j].Bandwidth()
		}
		return sorted[i].Name < sorted[j].Name
	})

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	for _, v := range sorted {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s\n", v.Bandwidth(), v.Resolution())
		b.WriteString(v.PlaylistName() + "\n")
	}

	manifestPath := filepath.Join(outputDir, MasterPlaylistName)
	if err := os.WriteFile(manifestPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write master playlist: %w", err)
	}
	return manifestPath, nil
}

package utils

import (
	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/models"
)

// DefaultVariants is the rendition ladder used when the config does not
// override it. Bitrates follow the usual per-resolution defaults.
func DefaultVariants() []models.Variant {
	return []models.Variant{
		{Name: "1080p", Width: 1920, Height: 1080, Bitrate: 5000},
		{Name: "720p", Width: 1280, Height: 720, Bitrate: 2800},
		{Name: "480p", Width: 854, Height: 480, Bitrate: 1400},
	}
}

func VariantsFromConfig(cfg *config.Config) []models.Variant {
	if len(cfg.Worker.Variants) == 0 {
		return DefaultVariants()
	}
	variants := make([]models.Variant, 0, len(cfg.Worker.Variants))
	for _, v := range cfg.Worker.Variants {
		variants = append(variants, models.Variant{
			Name:    v.Name,
			Width:   v.Width,
			Height:  v.Height,
			Bitrate: v.Bitrate,
		})
	}
	return variants
}

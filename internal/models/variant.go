package models

import "fmt"

// Variant is one resolution/bitrate rendition of the source video.
// Bitrate is in kbps.
type Variant struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bitrate int    `json:"bitrate"`
}

// Bandwidth is the nominal bits-per-second advertised in the master playlist.
func (v Variant) Bandwidth() int {
	return v.Bitrate * 1000
}

func (v Variant) Resolution() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// PlaylistName is the variant playlist path relative to the output prefix.
func (v Variant) PlaylistName() string {
	return v.Name + "/playlist.m3u8"
}

package models

// ImageAsset is a locally picked image waiting for upload.
type ImageAsset struct {
	Source      string // local path it was read from
	ContentType string
	Data        []byte
}

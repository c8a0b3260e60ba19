// Package torrent parses magnet links handed in with search results. No
// torrent is ever fetched; only the link's metadata is read.
package torrent

import (
	"errors"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

// ErrInvalidMagnet is returned for links that are not parseable magnet URIs
var ErrInvalidMagnet = errors.New("invalid magnet URI")

// MagnetInfo is the metadata carried by a magnet link
type MagnetInfo struct {
	InfoHash    string
	DisplayName string
	Trackers    []string
}

// ParseMagnet extracts the info hash, display name and trackers from uri
func ParseMagnet(uri string) (*MagnetInfo, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(strings.ToLower(uri), "magnet:") {
		return nil, ErrInvalidMagnet
	}

	spec, err := metainfo.ParseMagnetUri(uri)
	if err != nil {
		return nil, ErrInvalidMagnet
	}

	return &MagnetInfo{
		InfoHash:    spec.InfoHash.HexString(),
		DisplayName: spec.DisplayName,
		Trackers:    spec.Trackers,
	}, nil
}

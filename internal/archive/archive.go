// Package archive expands uploaded ZIP archives into candidate documents.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// ErrArchiveUnreadable is returned when the payload is not a readable ZIP.
var ErrArchiveUnreadable = errors.New("archive unreadable")

// maxMemberBytes caps a single decompressed member.
const maxMemberBytes = 25 << 20

// Member is one qualifying document extracted from an archive.
type Member struct {
	Name      string
	Path      string
	MediaType string
	Data      []byte
}

// Size returns the member length in bytes.
func (m Member) Size() int64 { return int64(len(m.Data)) }

var allowedExt = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/msword",
	".txt":  "text/plain",
	".rtf":  "application/rtf",
}

// MediaTypeFor derives the MIME type from the file extension alone.
func MediaTypeFor(name string) string {
	if mt, ok := allowedExt[strings.ToLower(path.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Allowed reports whether name carries one of the accepted document extensions.
func Allowed(name string) bool {
	_, ok := allowedExt[strings.ToLower(path.Ext(name))]
	return ok
}

// IsArtifact reports platform metadata entries such as AppleDouble files.
func IsArtifact(p string) bool {
	p = strings.ReplaceAll(p, "\\", "/")
	base := path.Base(p)
	if strings.HasPrefix(base, "._") || strings.Contains(p, ".DS_Store") {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "__MACOSX" {
			return true
		}
	}
	return false
}

// IsArchive decides whether an upload should be expanded.
func IsArchive(name, mediaType string) bool {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "application/zip", "application/x-zip-compressed":
		return true
	}
	return strings.EqualFold(path.Ext(name), ".zip")
}

// Expand returns the qualifying documents in archive order.
// Members that cannot be opened or read are skipped.
func Expand(data []byte, mediaType string) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnreadable, err)
	}

	members := make([]Member, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
		if !Allowed(name) || IsArtifact(f.Name) {
			continue
		}
		body, err := readMember(f)
		if err != nil {
			telemetry.Warn("archive.member.skipped", map[string]any{
				"member":     f.Name,
				"media_type": mediaType,
				"error":      err,
			})
			continue
		}
		members = append(members, Member{
			Name:      name,
			Path:      f.Name,
			MediaType: MediaTypeFor(name),
			Data:      body,
		})
	}
	return members, nil
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	body, err := io.ReadAll(io.LimitReader(rc, maxMemberBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxMemberBytes {
		return nil, fmt.Errorf("member exceeds %d bytes", maxMemberBytes)
	}
	return body, nil
}

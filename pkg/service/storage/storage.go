package storage

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/secmon-lab/deckmemo/pkg/domain/model"
)

// SignedURLTTL is the lifetime of a signed read URL
const SignedURLTTL = 15 * time.Minute

const uploadPrefix = "uploads"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectName builds the object key for an upload: uploads/<uploadID>/<sanitized file name>.
// The upload ID keeps keys unique even when two decks share a file name.
func ObjectName(uploadID model.UploadID, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "upload.pdf"
	}
	return path.Join(uploadPrefix, uploadID.String(), base)
}

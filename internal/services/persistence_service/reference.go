package services

import (
	"encoding/base64"
	"regexp"
	"strings"
)

const referenceComment = "<!-- Masonry Grid plugin by SquareHero.store - Do not remove -->"

// ManifestFilename is the name every saved manifest is uploaded under.
var ManifestFilename = base64.StdEncoding.EncodeToString([]byte("masonry-manifest.json")) + ".json"

var (
	referenceMetaRe    = regexp.MustCompile(`(?i)<meta\s+[^>]*squarehero-plugin=["']?masonry-grid["']?[^>]*>`)
	licenseKeyRe       = regexp.MustCompile(`(?i)license-key=["']?([^"'\s>]*)`)
	referenceBlockRe   = regexp.MustCompile(`(?i)<!--\s*Masonry Grid plugin by SquareHero\.store[^>]*>\s*\n?\s*<meta\s+squarehero-plugin=["']?(masonry-grid)["']?[^>]*>`)
	referenceCommentRe = regexp.MustCompile(`(?i)<!--\s*Masonry Grid plugin by SquareHero\.store[^>]*>`)
	extraBlankLinesRe  = regexp.MustCompile(`\n\s*\n\s*\n`)
	leadingBlankRe     = regexp.MustCompile(`^\s*\n+`)
)

// ReferenceTag builds the header block pointing at the manifest url.
func ReferenceTag(url string) string {
	key := base64.StdEncoding.EncodeToString([]byte(url))
	return referenceComment + "\n" + `<meta squarehero-plugin="masonry-grid" license-key="` + key + `">`
}

// ParseReference returns the manifest url embedded in header, or "" when
// there is none or the key does not decode.
func ParseReference(header string) string {
	meta := referenceMetaRe.FindString(header)
	if meta == "" {
		return ""
	}

	m := licenseKeyRe.FindStringSubmatch(meta)
	if len(m) < 2 || m[1] == "" {
		return ""
	}

	url, err := base64.StdEncoding.DecodeString(m[1])
	if err != nil {
		return ""
	}
	return string(url)
}

// ReplaceReference drops every previous reference block from header and
// appends a fresh one for url on its own line.
func ReplaceReference(header, url string) string {
	out := referenceBlockRe.ReplaceAllString(header, "")
	out = referenceCommentRe.ReplaceAllString(out, "")
	out = referenceMetaRe.ReplaceAllString(out, "")

	out = extraBlankLinesRe.ReplaceAllString(out, "\n\n")
	out = leadingBlankRe.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)

	if out == "" {
		return ReferenceTag(url)
	}
	return out + "\n" + ReferenceTag(url)
}

package services_test

import (
	"encoding/base64"
	"strings"
	"testing"

	services "masonry_grid/internal/services/persistence_service"

	"github.com/stretchr/testify/assert"
)

func TestManifestFilename(t *testing.T) {
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("masonry-manifest.json"))+".json", services.ManifestFilename)
}

func TestReference_RoundTrip(t *testing.T) {
	url := "https://static.example.com/a/b.json?x=1&y=2"

	tag := services.ReferenceTag(url)
	assert.True(t, strings.HasPrefix(tag, "<!-- Masonry Grid plugin by SquareHero.store - Do not remove -->\n"))
	assert.Contains(t, tag, `squarehero-plugin="masonry-grid"`)
	assert.Equal(t, url, services.ParseReference(tag))
}

func TestParseReference(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("https://x/m.json"))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{name: "no tag", header: `<meta name="viewport" content="x">`, want: ""},
		{name: "single quotes", header: `<meta squarehero-plugin='masonry-grid' license-key='` + key + `'>`, want: "https://x/m.json"},
		{name: "attribute order", header: `<meta license-key="` + key + `" squarehero-plugin="masonry-grid">`, want: "https://x/m.json"},
		{name: "bad base64", header: `<meta squarehero-plugin="masonry-grid" license-key="%%%">`, want: ""},
		{name: "other plugin", header: `<meta squarehero-plugin="other" license-key="` + key + `">`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ParseReference(tt.header))
		})
	}
}

func TestReplaceReference(t *testing.T) {
	newTag := services.ReferenceTag("https://x/new.json")

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "empty header",
			header: "",
			want:   newTag,
		},
		{
			name:   "keeps other content",
			header: "<script src=\"a.js\"></script>",
			want:   "<script src=\"a.js\"></script>\n" + newTag,
		},
		{
			name:   "replaces previous block",
			header: "<style></style>\n\n" + services.ReferenceTag("https://x/old.json") + "\n\n\n<script></script>",
			want:   "<style></style>\n\n<script></script>\n" + newTag,
		},
		{
			name:   "drops leftover comment",
			header: "<!-- Masonry Grid plugin by SquareHero.store - Do not remove -->\n<link rel=\"x\">",
			want:   "<link rel=\"x\">\n" + newTag,
		},
		{
			name:   "drops several blocks",
			header: services.ReferenceTag("https://x/1.json") + "\n" + services.ReferenceTag("https://x/2.json"),
			want:   newTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ReplaceReference(tt.header, "https://x/new.json")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "https://x/new.json", services.ParseReference(got))
		})
	}
}

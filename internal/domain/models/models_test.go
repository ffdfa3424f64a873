package models_test

import (
	"errors"
	"fmt"
	"testing"

	"masonry_grid/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridError_Kinds(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("persistence.Save: %w", models.NewError(models.KindNetwork, "backend.Upload", base))

	assert.True(t, models.IsKind(err, models.KindNetwork))
	assert.False(t, models.IsKind(err, models.KindUpload))
	assert.ErrorIs(t, err, base)

	kind, ok := models.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, models.KindNetwork, kind)

	_, ok = models.KindOf(base)
	assert.False(t, ok)

	assert.Contains(t, err.Error(), "network error")
}

func TestStyleSettings_ClampAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      models.StyleSettings
		want    models.StyleSettings
		wantErr bool
	}{
		{
			name: "defaults stay untouched",
			in:   models.DefaultStyleSettings(),
			want: models.DefaultStyleSettings(),
		},
		{
			name: "out of range values are clamped",
			in: models.StyleSettings{
				RowGap: 150, ItemGap: -5, MobileRowGap: 101, MobileItemGap: 0, BorderRadius: 70,
				Shadow: models.ShadowHeavy, HoverEffect: models.HoverLift,
			},
			want: models.StyleSettings{
				RowGap: 100, ItemGap: 0, MobileRowGap: 100, MobileItemGap: 0, BorderRadius: 50,
				Shadow: models.ShadowHeavy, HoverEffect: models.HoverLift,
			},
		},
		{
			name:    "unknown shadow",
			in:      models.StyleSettings{Shadow: "neon", HoverEffect: models.HoverNone},
			wantErr: true,
		},
		{
			name:    "unknown hover",
			in:      models.StyleSettings{Shadow: models.ShadowNone, HoverEffect: "spin"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidStyle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}

func TestGridDocument_CloneIsDeep(t *testing.T) {
	doc := &models.GridDocument{
		SectionID: "s1",
		Rows: []models.Row{{
			Layout: "50-50",
			Items: []models.Item{
				{Kind: models.ItemVideo, Content: "https://x/v.mp4", Metadata: &models.VideoMetadata{
					AssetData:  &models.AssetRecord{ID: "a1", Tags: []string{"x"}},
					Thumbnails: []string{"t1"},
				}},
				models.PlaceholderItem(1, ""),
			},
		}},
		Style: models.DefaultStyleSettings(),
	}

	clone := doc.Clone()
	require.Equal(t, doc, clone)

	clone.Rows[0].Items[0].Metadata.Thumbnails[0] = "changed"
	clone.Rows[0].Items[0].Metadata.AssetData.Tags[0] = "changed"
	clone.Rows[0].Items[1].Content = "changed"

	assert.Equal(t, "t1", doc.Rows[0].Items[0].Metadata.Thumbnails[0])
	assert.Equal(t, "x", doc.Rows[0].Items[0].Metadata.AssetData.Tags[0])
	assert.Equal(t, "Item 2", doc.Rows[0].Items[1].Content)
	assert.Equal(t, []string{"https://x/v.mp4"}, doc.MediaURLs())
}

func TestProcessingJob_State(t *testing.T) {
	assert.Equal(t, models.JobPending, models.ProcessingJob{Status: 1}.State())
	assert.Equal(t, models.JobSucceeded, models.ProcessingJob{Status: 3, IsSuccess: true, AssetID: "a"}.State())
	assert.Equal(t, models.JobFailed, models.ProcessingJob{Status: 3, IsSuccess: false}.State())
	assert.Equal(t, models.JobFailed, models.ProcessingJob{Status: 3, IsSuccess: true}.State())
}

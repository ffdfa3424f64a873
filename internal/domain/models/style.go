package models

import (
	"fmt"
)

type Shadow string

const (
	ShadowNone   Shadow = "none"
	ShadowLight  Shadow = "light"
	ShadowMedium Shadow = "medium"
	ShadowHeavy  Shadow = "heavy"
)

type HoverEffect string

const (
	HoverNone  HoverEffect = "none"
	HoverScale HoverEffect = "scale"
	HoverLift  HoverEffect = "lift"
	HoverFade  HoverEffect = "fade"
)

const (
	MaxGap    = 100
	MaxRadius = 50
)

// StyleSettings are global display parameters applied to every row.
type StyleSettings struct {
	RowGap        int         `json:"rowGap"`
	ItemGap       int         `json:"itemGap"`
	MobileRowGap  int         `json:"mobileRowGap"`
	MobileItemGap int         `json:"mobileItemGap"`
	BorderRadius  int         `json:"borderRadius"`
	Shadow        Shadow      `json:"shadow" validate:"oneof=none light medium heavy"`
	HoverEffect   HoverEffect `json:"hoverEffect" validate:"oneof=none scale lift fade"`
	CropImages    bool        `json:"cropImages"`
}

func DefaultStyleSettings() StyleSettings {
	return StyleSettings{
		RowGap:        50,
		ItemGap:       50,
		MobileRowGap:  30,
		MobileItemGap: 20,
		BorderRadius:  8,
		Shadow:        ShadowNone,
		HoverEffect:   HoverScale,
		CropImages:    true,
	}
}

// Validate checks enum values. Out of range numbers are clamped, not rejected.
func (s StyleSettings) Validate() error {
	switch s.Shadow {
	case ShadowNone, ShadowLight, ShadowMedium, ShadowHeavy:
	default:
		return fmt.Errorf("%w: shadow %q", ErrInvalidStyle, s.Shadow)
	}

	switch s.HoverEffect {
	case HoverNone, HoverScale, HoverLift, HoverFade:
	default:
		return fmt.Errorf("%w: hover effect %q", ErrInvalidStyle, s.HoverEffect)
	}

	return nil
}

func (s StyleSettings) Clamp() StyleSettings {
	s.RowGap = clamp(s.RowGap, 0, MaxGap)
	s.ItemGap = clamp(s.ItemGap, 0, MaxGap)
	s.MobileRowGap = clamp(s.MobileRowGap, 0, MaxGap)
	s.MobileItemGap = clamp(s.MobileItemGap, 0, MaxGap)
	s.BorderRadius = clamp(s.BorderRadius, 0, MaxRadius)
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package model

import (
	"fmt"
	"strings"
)

// Modality is the kind of input a model consumes.
type Modality int

const (
	Image Modality = iota
	Audio
)

func (m Modality) String() string {
	switch m {
	case Image:
		return "image"
	case Audio:
		return "audio"
	default:
		return fmt.Sprintf("modality(%d)", int(m))
	}
}

// ParseModality accepts "image" or "audio" (case-insensitive).
func ParseModality(s string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "img":
		return Image, nil
	case "audio", "sound":
		return Audio, nil
	}
	return 0, fmt.Errorf("unknown modality %q (want image or audio)", s)
}

func (m Modality) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Modality) UnmarshalText(b []byte) error {
	v, err := ParseModality(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

package transform

import "fmt"

// Type identifies one of the supported image operations.
type Type string

const (
	TypeRestore          Type = "restore"
	TypeFill             Type = "fill"
	TypeRemove           Type = "remove"
	TypeRecolor          Type = "recolor"
	TypeRemoveBackground Type = "removeBackground"
)

// ParseType validates a transformation type coming from a request.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeRestore, TypeFill, TypeRemove, TypeRecolor, TypeRemoveBackground:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transformation type: %q", s)
	}
}

// RestoreParams enables generative restoration. It carries no tunables.
type RestoreParams struct {
	Enabled bool `json:"enabled"`
}

// FillParams describes a generative-fill expansion to a target frame.
type FillParams struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// RemoveParams describes generative object removal.
type RemoveParams struct {
	Prompt       string `json:"prompt,omitempty"`
	RemoveShadow bool   `json:"removeShadow,omitempty"`
	Multiple     bool   `json:"multiple,omitempty"`
}

// RecolorParams describes generative recoloring of a prompted object.
type RecolorParams struct {
	Prompt   string `json:"prompt,omitempty"`
	To       string `json:"to,omitempty"`
	Multiple bool   `json:"multiple,omitempty"`
}

// RemoveBackgroundParams enables background removal. It carries no tunables.
type RemoveBackgroundParams struct {
	Enabled bool `json:"enabled"`
}

// Config maps each operation type to its parameter record. A nil entry means
// the operation is not part of the configuration. Serialized to JSON it has
// the shape {"recolor":{"prompt":"shirt","to":"red"}, ...}.
type Config struct {
	Restore          *RestoreParams          `json:"restore,omitempty"`
	Fill             *FillParams             `json:"fill,omitempty"`
	Remove           *RemoveParams           `json:"remove,omitempty"`
	Recolor          *RecolorParams          `json:"recolor,omitempty"`
	RemoveBackground *RemoveBackgroundParams `json:"removeBackground,omitempty"`
}

// IsEmpty reports whether no operation is configured.
func (c Config) IsEmpty() bool {
	return c.Restore == nil && c.Fill == nil && c.Remove == nil &&
		c.Recolor == nil && c.RemoveBackground == nil
}

// Merge combines overlay into base, leaf by leaf. Keys present in both are
// taken from overlay; keys present in only one side are retained. Neither
// argument is mutated.
func Merge(base, overlay Config) Config {
	out := Config{}

	if base.Restore != nil || overlay.Restore != nil {
		p := RestoreParams{}
		if base.Restore != nil {
			p = *base.Restore
		}
		if overlay.Restore != nil {
			p.Enabled = p.Enabled || overlay.Restore.Enabled
		}
		out.Restore = &p
	}

	if base.Fill != nil || overlay.Fill != nil {
		p := FillParams{}
		if base.Fill != nil {
			p = *base.Fill
		}
		if overlay.Fill != nil {
			if overlay.Fill.AspectRatio != "" {
				p.AspectRatio = overlay.Fill.AspectRatio
			}
			if overlay.Fill.Width != 0 {
				p.Width = overlay.Fill.Width
			}
			if overlay.Fill.Height != 0 {
				p.Height = overlay.Fill.Height
			}
		}
		out.Fill = &p
	}

	if base.Remove != nil || overlay.Remove != nil {
		p := RemoveParams{}
		if base.Remove != nil {
			p = *base.Remove
		}
		if overlay.Remove != nil {
			if overlay.Remove.Prompt != "" {
				p.Prompt = overlay.Remove.Prompt
			}
			p.RemoveShadow = p.RemoveShadow || overlay.Remove.RemoveShadow
			p.Multiple = p.Multiple || overlay.Remove.Multiple
		}
		out.Remove = &p
	}

	if base.Recolor != nil || overlay.Recolor != nil {
		p := RecolorParams{}
		if base.Recolor != nil {
			p = *base.Recolor
		}
		if overlay.Recolor != nil {
			if overlay.Recolor.Prompt != "" {
				p.Prompt = overlay.Recolor.Prompt
			}
			if overlay.Recolor.To != "" {
				p.To = overlay.Recolor.To
			}
			p.Multiple = p.Multiple || overlay.Recolor.Multiple
		}
		out.Recolor = &p
	}

	if base.RemoveBackground != nil || overlay.RemoveBackground != nil {
		p := RemoveBackgroundParams{}
		if base.RemoveBackground != nil {
			p = *base.RemoveBackground
		}
		if overlay.RemoveBackground != nil {
			p.Enabled = p.Enabled || overlay.RemoveBackground.Enabled
		}
		out.RemoveBackground = &p
	}

	return out
}

// DefaultConfig returns the configuration a freshly selected operation
// starts from. Restore and background removal are fully specified by their
// defaults; the prompted operations start with their fixed flags set and
// wait for field edits.
func DefaultConfig(t Type) Config {
	switch t {
	case TypeRestore:
		return Config{Restore: &RestoreParams{Enabled: true}}
	case TypeRemoveBackground:
		return Config{RemoveBackground: &RemoveBackgroundParams{Enabled: true}}
	case TypeRemove:
		return Config{Remove: &RemoveParams{RemoveShadow: true, Multiple: true}}
	case TypeRecolor:
		return Config{Recolor: &RecolorParams{Multiple: true}}
	default:
		return Config{}
	}
}

// AspectRatioOption is one selectable target frame for generative fill.
type AspectRatioOption struct {
	AspectRatio string
	Label       string
	Width       int
	Height      int
}

// AspectRatioOptions lists the supported fill frames, keyed by ratio.
var AspectRatioOptions = map[string]AspectRatioOption{
	"1:1":  {AspectRatio: "1:1", Label: "Square (1:1)", Width: 1000, Height: 1000},
	"3:4":  {AspectRatio: "3:4", Label: "Standard Portrait (3:4)", Width: 1000, Height: 1334},
	"9:16": {AspectRatio: "9:16", Label: "Phone Portrait (9:16)", Width: 1000, Height: 1778},
}

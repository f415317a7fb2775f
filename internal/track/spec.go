package track

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SegmentSpec is the YAML-authored form of a single Segment (SPEC_FULL.md
// §3.1): one of Kind's names with the fields that kind needs; fields
// irrelevant to a given kind are ignored.
type SegmentSpec struct {
	Kind       string  `yaml:"kind"`
	Length     float64 `yaml:"length,omitempty"`
	HalfLength float64 `yaml:"halfLength,omitempty"`
	Radius     float64 `yaml:"radius,omitempty"`
	AngleDeg   float64 `yaml:"angleDeg,omitempty"`
	Side       string  `yaml:"side,omitempty"`
}

func (s SegmentSpec) side() Side {
	if s.Side == "right" {
		return Right
	}
	return Left
}

// ToSegment converts one SegmentSpec into its runtime Segment.
func (s SegmentSpec) ToSegment() (Segment, error) {
	switch s.Kind {
	case "start":
		return StartSegment{}, nil
	case "straight":
		return Straight{Length: s.Length}, nil
	case "ninetyDegTurn":
		return NinetyDegTurn{HalfLength: s.HalfLength, Side: s.side()}, nil
	case "circleTurn":
		return CircleTurn{Radius: s.Radius, AngleRad: s.AngleDeg * math.Pi / 180, Side: s.side()}, nil
	case "end":
		return End{}, nil
	default:
		return nil, fmt.Errorf("track: unknown segment kind %q", s.Kind)
	}
}

// Spec is the top-level YAML document: an ordered list of segments.
type Spec struct {
	Segments []SegmentSpec `yaml:"segments"`
}

// LoadSpec reads a track definition from a YAML file, using viper to
// locate/read it (the same pattern the host's RunConfig uses), and builds
// a Track starting at the world origin.
func LoadSpec(path string) (*Track, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := vp.Unmarshal(&raw); err != nil {
		return nil, err
	}

	marshalled, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var spec Spec
	if err := yaml.Unmarshal(marshalled, &spec); err != nil {
		return nil, err
	}

	segments := make([]Segment, 0, len(spec.Segments))
	for _, ss := range spec.Segments {
		seg, err := ss.ToSegment()
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	return Build(segments, Frame{}), nil
}

// Package scenefile loads scene descriptions written in YAML or TOML and
// generates the flat geometry buffers a level is built from.
package scenefile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/greed/internal/game/level"
)

var (
	// ErrFormat is returned for an unsupported file extension.
	ErrFormat = errors.New("scenefile: unsupported format")
	// ErrReference marks a node or mesh naming an undefined mesh or material.
	ErrReference = errors.New("scenefile: unknown reference")
	// ErrDuplicate marks two meshes or materials sharing a name.
	ErrDuplicate = errors.New("scenefile: duplicate name")
	// ErrShape marks an unknown or malformed primitive.
	ErrShape = errors.New("scenefile: invalid shape")
)

// Format is a scene file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// File is the on-disk scene description.
type File struct {
	Name      string         `yaml:"name" toml:"name"`
	Materials []MaterialSpec `yaml:"materials" toml:"materials"`
	Meshes    []MeshSpec     `yaml:"meshes" toml:"meshes"`
	Nodes     []NodeSpec     `yaml:"nodes" toml:"nodes"`
	Sun       *SunSpec       `yaml:"sun" toml:"sun"`
}

// SunSpec sets the scene's directional light. Angles are in degrees.
type SunSpec struct {
	Azimuth   float32 `yaml:"azimuth" toml:"azimuth"`
	Elevation float32 `yaml:"elevation" toml:"elevation"`
	Ambient   float32 `yaml:"ambient" toml:"ambient"`
}

// MaterialSpec describes one material.
type MaterialSpec struct {
	Name  string     `yaml:"name" toml:"name"`
	Color [4]float32 `yaml:"color" toml:"color"`
}

// MeshSpec describes a generated primitive.
type MeshSpec struct {
	Name     string     `yaml:"name" toml:"name"`
	Shape    string     `yaml:"shape" toml:"shape"` // box or sphere
	Material string     `yaml:"material" toml:"material"`
	LODs     int        `yaml:"lods" toml:"lods"`
	Size     [3]float32 `yaml:"size" toml:"size"`         // box edge lengths
	Radius   float32    `yaml:"radius" toml:"radius"`     // sphere
	Segments int        `yaml:"segments" toml:"segments"` // sphere, most detailed level
}

// NodeSpec describes one node and its subtree. Rotation is a quaternion
// (x, y, z, w); Euler is pitch, yaw, roll in degrees and is used when
// Rotation is unset.
type NodeSpec struct {
	Name        string      `yaml:"name" toml:"name"`
	Translation [3]float32  `yaml:"translation" toml:"translation"`
	Rotation    *[4]float32 `yaml:"rotation" toml:"rotation"`
	Euler       [3]float32  `yaml:"euler" toml:"euler"`
	Scale       *[3]float32 `yaml:"scale" toml:"scale"`
	Meshes      []string    `yaml:"meshes" toml:"meshes"`
	Children    []NodeSpec  `yaml:"children" toml:"children"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrFormat)
}

// Load reads and builds the scene at path.
func Load(path string) (*level.Scene, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	sc, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Decode parses data and builds the scene.
func Decode(data []byte, format Format) (*level.Scene, error) {
	f, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	return Build(f)
}

// Parse decodes data without building geometry. Unknown keys are rejected.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrFormat)
	}
	return &f, nil
}

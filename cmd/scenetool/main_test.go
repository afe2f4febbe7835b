package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sceneYAML = `
name: pair
materials:
  - name: stone
meshes:
  - name: crate
    shape: box
    material: stone
    lods: 2
nodes:
  - name: front
    meshes: [crate]
  - name: behind
    translation: [0, 0, 50]
    meshes: [crate]
`

func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pair.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))
	return path
}

func TestInfo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("info", []string{writeScene(t)}, &out))
	assert.Contains(t, out.String(), "Scene:     pair")
	assert.Contains(t, out.String(), "Meshes:    1")
	assert.Contains(t, out.String(), "Bounds:")
}

func TestTree(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("tree", []string{writeScene(t)}, &out))
	assert.Contains(t, out.String(), "  front [crate]\n")
	assert.Contains(t, out.String(), "  behind [crate]\n")
}

func TestFrameCullsBehindCamera(t *testing.T) {
	path := writeScene(t)

	var out bytes.Buffer
	require.NoError(t, run("frame", []string{"-pos", "0,0,10", "-commands", path}, &out))

	var report frameReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "pair", report.Scene)
	assert.Equal(t, 1, report.Stats.Commands)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "stone", report.Groups[0].Material)
	require.Len(t, report.Commands, 1)
	assert.InDelta(t, -1, report.Camera.Forward[2], 1e-4)
	assert.Equal(t, []float32{0, 0.5}, report.Stats.LODThresholds)

	out.Reset()
	require.NoError(t, run("frame", []string{"-nocull", path}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 2, report.Stats.Commands)
}

func TestFrameFlags(t *testing.T) {
	var out bytes.Buffer
	err := run("frame", []string{"-pos", "1,2", writeScene(t)}, &out)
	assert.Error(t, err)

	err = run("frame", nil, &out)
	assert.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run("bogus", nil, &out))
	assert.Contains(t, out.String(), "Usage:")
}

func TestVec3Flag(t *testing.T) {
	var v vec3Flag
	require.NoError(t, v.Set("1, -2.5, 3"))
	assert.Equal(t, vec3Flag{X: 1, Y: -2.5, Z: 3}, v)
	assert.Error(t, v.Set("1,x,3"))
}

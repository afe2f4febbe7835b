package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/greed/internal/engine/batch"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveFrame(t *testing.T) {
	stats := batch.Stats{
		NodesVisited:      12,
		NodesCulled:       5,
		Commands:          7,
		Groups:            2,
		FrustumDegenerate: true,
	}
	stats.LODHistogram[0] = 4
	stats.LODHistogram[2] = 3
	ObserveFrame(stats, 2*time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, "greed_draw_commands 7")
	assert.Contains(t, body, "greed_material_groups 2")
	assert.Contains(t, body, "greed_nodes_visited 12")
	assert.Contains(t, body, "greed_nodes_culled 5")
	assert.Contains(t, body, `greed_lod_selections_total{lod="2"}`)
	assert.NotContains(t, body, `greed_lod_selections_total{lod="1"}`)
	assert.Contains(t, body, "greed_degenerate_frustums_total")
	assert.Contains(t, body, "greed_batch_build_seconds_count")
}

func TestCountLevelLoad(t *testing.T) {
	CountLevelLoad(nil)
	CountLevelLoad(errors.New("broken"))

	body := scrape(t)
	assert.Contains(t, body, `greed_level_loads_total{result="ok"}`)
	assert.Contains(t, body, `greed_level_loads_total{result="error"}`)
}

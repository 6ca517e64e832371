package navigation_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-smalluser/Scene-Nav/pkg/geom"
	"github.com/A-smalluser/Scene-Nav/pkg/guidance"
	"github.com/A-smalluser/Scene-Nav/pkg/navigation"
	"github.com/A-smalluser/Scene-Nav/pkg/pose"
	"github.com/A-smalluser/Scene-Nav/pkg/recovery"
)

func TestSnapshotJSON(t *testing.T) {
	f := newFixture(t)
	f.engine.RequestNavigate(navigation.NavigateRequest{Target: geom.Vec{Z: 5}, Heading: forward})
	f.engine.Tick(pose.New(geom.Vec{}, forward), t0)
	f.engine.Tick(pose.New(geom.Vec{X: 1, Z: 2.5}, forward), at(2*time.Second))

	want := f.engine.Snapshot()
	require.Equal(t, guidance.StateWalking, want.State)
	require.Equal(t, recovery.PhaseAlerting, want.Recovery)
	require.NotNil(t, want.LastInstruction)

	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"walking"`)
	assert.Contains(t, string(data), `"recovery":"alerting"`)

	var got navigation.Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

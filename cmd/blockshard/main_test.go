package main

import (
	"testing"

	"pkg.world.dev/blockshard"
	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/testutils"
	"pkg.world.dev/blockshard/types"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	t.Setenv("BLOCKSHARD_TICK_RATE", "0")
	err := run(blockshard.WithoutServer())
	assert.ErrorContains(t, err, "BLOCKSHARD_TICK_RATE")
}

func TestGenerateSpawn(t *testing.T) {
	tw := testutils.NewTestWorld(t, nil)
	tw.StartWorld()
	tw.Do(GenerateSpawn)
	assert.Equal(t, types.State(blocks.Bedrock, 0), tw.Block(types.P(0, 0, 0)))
	assert.Equal(t, types.State(blocks.Dirt, 0), tw.Block(types.P(-spawnRadius, 3, spawnRadius-1)))
	assert.Equal(t, types.State(blocks.Grass, 0), tw.Block(types.P(3, 4, -7)))

	// A second run leaves existing ground alone.
	tw.SetBlockSilently(types.P(3, 4, -7), types.State(blocks.Stone, 0))
	tw.Do(GenerateSpawn)
	assert.Equal(t, types.State(blocks.Stone, 0), tw.Block(types.P(3, 4, -7)))
}

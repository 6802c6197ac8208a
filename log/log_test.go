package log_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/log"
	"pkg.world.dev/blockshard/server"
	"pkg.world.dev/blockshard/types"
)

type fakeWorld struct{}

func (fakeWorld) Info() server.WorldInfo {
	return server.WorldInfo{
		Namespace:  "test",
		Components: []string{"Position", "Health"},
		Systems:    []string{"blocks.FallingSystem"},
		Blocks:     []server.BlockInfo{{ID: 1, Name: "stone"}},
		Items:      []server.ItemInfo{{Key: types.Key(1, types.AnyMeta), Name: "stone"}},
	}
}

func TestWorld(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	log.World(&logger, fakeWorld{}, zerolog.InfoLevel)
	assert.JSONEq(t, `{
		"level": "info",
		"namespace": "test",
		"total_components": 2,
		"components": ["Position", "Health"],
		"total_systems": 1,
		"systems": ["blocks.FallingSystem"],
		"total_blocks": 1,
		"blocks": [{"id": 1, "name": "stone"}],
		"total_items": 1,
		"items": [{"key": "1:*", "name": "stone"}]
	}`, buf.String())
}

type Health struct{ Value int }

func (Health) Name() string { return "Health" }

func TestEntity(t *testing.T) {
	store := ecs.NewStore()
	_, err := ecs.RegisterComponent[Health](store)
	assert.NilError(t, err)
	id := store.Create()
	assert.NilError(t, store.Insert(id, Health{Value: 3}))

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	log.Entity(&logger, zerolog.DebugLevel, store, id)
	assert.JSONEq(t, `{"level":"debug","entity":"`+id.String()+`","components":["Health"]}`, buf.String())
}

func TestSystemLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	log.CreateSystemLogger(&logger, "blocks.FallingSystem").Info().Msg("hi")
	assert.JSONEq(t, `{"level":"info","system":"blocks.FallingSystem","message":"hi"}`, buf.String())
}

package intent_test

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"pkg.world.dev/blockshard/assert"
	"pkg.world.dev/blockshard/intent"
	"pkg.world.dev/blockshard/types"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		kind string
		body string
		want intent.Intent
	}{
		{"move", `{"entity":4,"to":[1.5,2,3]}`, intent.Move{Entity: 4, To: mgl64.Vec3{1.5, 2, 3}}},
		{"dig", `{"entity":1,"pos":{"x":1,"y":2,"z":3}}`, intent.Dig{Entity: 1, Pos: types.P(1, 2, 3)}},
		{
			"place", `{"entity":1,"pos":{"x":0,"y":4,"z":0},"face":1}`,
			intent.Place{Entity: 1, Pos: types.P(0, 4, 0), Face: types.Up},
		},
		{
			"interact", `{"entity":2,"target":7,"has_target":true,"face":-1}`,
			intent.Interact{Entity: 2, Target: 7, HasTarget: true, Face: types.Invalid},
		},
		{
			"action", `{"entity":3,"action":"select_slot","slot":5}`,
			intent.Action{Entity: 3, Action: intent.ActionSelectSlot, Slot: 5},
		},
	}
	for _, tc := range tests {
		t.Run(tc.kind, func(t *testing.T) {
			got, err := intent.Decode(intent.Envelope{Kind: tc.kind, Body: []byte(tc.body)})
			assert.NilError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.kind, got.Kind())
			assert.Equal(t, tc.want.Actor(), got.Actor())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := intent.Decode(intent.Envelope{Kind: "fly", Body: []byte(`{}`)})
	assert.ErrorIs(t, err, intent.ErrUnknownKind)

	_, err = intent.Decode(intent.Envelope{Kind: "dig", Body: []byte(`{"entity":`)})
	assert.Check(t, err != nil)
}

func TestQueueKeepsArrivalOrder(t *testing.T) {
	q := intent.NewQueue()
	for i := 0; i < 3; i++ {
		q.Push(intent.Dig{Entity: 1, Pos: types.P(i, 0, 0)})
	}
	assert.Equal(t, 3, q.Len())

	drained := q.Drain()
	assert.Equal(t, 3, len(drained))
	for i, in := range drained {
		assert.Equal(t, types.P(i, 0, 0), in.(intent.Dig).Pos)
	}
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, len(q.Drain()))
}

func TestQueueConcurrentPush(t *testing.T) {
	q := intent.NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(intent.Action{Entity: 1, Action: intent.ActionEat})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, len(q.Drain()))
}

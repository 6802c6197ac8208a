// Package intent holds the typed client intents the network front hands to the simulation.
package intent

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"pkg.world.dev/blockshard/codec"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/types"
)

var ErrUnknownKind = eris.New("unknown intent kind")

// Intent is one decoded client request. Every intent acts on behalf of Entity.
type Intent interface {
	Kind() string
	Actor() ecs.EntityID
}

type Move struct {
	Entity ecs.EntityID `json:"entity"`
	To     mgl64.Vec3   `json:"to"`
}

type Dig struct {
	Entity ecs.EntityID `json:"entity"`
	Pos    types.Pos    `json:"pos"`
}

// Place uses the held item against Face of the block at Pos.
type Place struct {
	Entity ecs.EntityID `json:"entity"`
	Pos    types.Pos    `json:"pos"`
	Face   types.Face   `json:"face"`
}

// Interact right-clicks the block at Pos, or the entity Target when HasTarget is set.
type Interact struct {
	Entity    ecs.EntityID `json:"entity"`
	Pos       types.Pos    `json:"pos"`
	Face      types.Face   `json:"face"`
	Target    ecs.EntityID `json:"target"`
	HasTarget bool         `json:"has_target"`
}

type ActionKind string

const (
	ActionEat        ActionKind = "eat"
	ActionStopUsing  ActionKind = "stop_using"
	ActionSelectSlot ActionKind = "select_slot"
)

type Action struct {
	Entity ecs.EntityID `json:"entity"`
	Action ActionKind   `json:"action"`
	Slot   int          `json:"slot"`
}

func (Move) Kind() string     { return "move" }
func (Dig) Kind() string      { return "dig" }
func (Place) Kind() string    { return "place" }
func (Interact) Kind() string { return "interact" }
func (Action) Kind() string   { return "action" }

func (i Move) Actor() ecs.EntityID     { return i.Entity }
func (i Dig) Actor() ecs.EntityID      { return i.Entity }
func (i Place) Actor() ecs.EntityID    { return i.Entity }
func (i Interact) Actor() ecs.EntityID { return i.Entity }
func (i Action) Actor() ecs.EntityID   { return i.Entity }

// Envelope is the wire form of an intent: its kind plus the JSON body.
type Envelope struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body"`
}

// Decode turns an envelope into a typed intent.
func Decode(env Envelope) (Intent, error) {
	switch env.Kind {
	case Move{}.Kind():
		return decodeAs[Move](env.Body)
	case Dig{}.Kind():
		return decodeAs[Dig](env.Body)
	case Place{}.Kind():
		return decodeAs[Place](env.Body)
	case Interact{}.Kind():
		return decodeAs[Interact](env.Body)
	case Action{}.Kind():
		return decodeAs[Action](env.Body)
	}
	return nil, eris.Wrapf(ErrUnknownKind, "kind %q", env.Kind)
}

func decodeAs[T Intent](body json.RawMessage) (Intent, error) {
	v, err := codec.Decode[T](body)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Queue hands intents from I/O goroutines to the simulation goroutine.
type Queue struct {
	mu      sync.Mutex
	intents []Intent
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(i Intent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.intents = append(q.intents, i)
}

// Drain returns every queued intent in arrival order and empties the queue.
func (q *Queue) Drain() []Intent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.intents
	q.intents = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.intents)
}

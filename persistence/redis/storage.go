package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/blockshard/codec"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/terrain"
)

type Options = redis.Options

// Storage is the redis backed save store of a world: entity compounds, compressed chunks, pending deferred tasks
// and component schemas, all under one namespace.
type Storage struct {
	Namespace string
	Client    *redis.Client
	SchemaStorage

	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewRedisStorage(options Options, namespace string) (*Storage, error) {
	client := redis.NewClient(&options)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, eris.Wrap(err, "failed to create chunk encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create chunk decoder")
	}
	return &Storage{
		Namespace:     namespace,
		Client:        client,
		SchemaStorage: NewSchemaStorage(client, namespace),
		enc:           enc,
		dec:           dec,
	}, nil
}

func (r *Storage) entitiesKey() string { return r.Namespace + ":entities" }

func (r *Storage) chunkKey(cp terrain.ChunkPos) string {
	return fmt.Sprintf("%s:chunk:%d:%d", r.Namespace, cp.X, cp.Z)
}

func (r *Storage) chunkIndexKey() string { return r.Namespace + ":chunks" }

func (r *Storage) tasksKey() string { return r.Namespace + ":tasks" }

func (r *Storage) tickKey() string { return r.Namespace + ":tick" }

// SaveEntities replaces every saved entity with compounds, keyed by their uuid.
func (r *Storage) SaveEntities(ctx context.Context, compounds []persistence.Compound) error {
	values := make(map[string]any, len(compounds))
	for _, c := range compounds {
		id, err := c.String("uuid")
		if err != nil {
			return eris.Wrapf(err, "entity %q", c.Tag())
		}
		bz, err := c.Encode()
		if err != nil {
			return err
		}
		values[id] = bz
	}
	pipe := r.Client.TxPipeline()
	pipe.Del(ctx, r.entitiesKey())
	if len(values) > 0 {
		pipe.HSet(ctx, r.entitiesKey(), values)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return eris.Wrap(err, "failed to save entities")
	}
	return nil
}

func (r *Storage) LoadEntities(ctx context.Context) ([]persistence.Compound, error) {
	raw, err := r.Client.HGetAll(ctx, r.entitiesKey()).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load entities")
	}
	out := make([]persistence.Compound, 0, len(raw))
	for id, data := range raw {
		c, err := persistence.DecodeCompound([]byte(data))
		if err != nil {
			return nil, eris.Wrapf(err, "entity %s", id)
		}
		out = append(out, c)
	}
	return out, nil
}

// SaveChunk stores the zstd compressed binary form of a chunk.
func (r *Storage) SaveChunk(ctx context.Context, cp terrain.ChunkPos, c *terrain.Chunk) error {
	bz, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	pipe := r.Client.TxPipeline()
	pipe.Set(ctx, r.chunkKey(cp), r.enc.EncodeAll(bz, nil), 0)
	pipe.SAdd(ctx, r.chunkIndexKey(), fmt.Sprintf("%d:%d", cp.X, cp.Z))
	if _, err := pipe.Exec(ctx); err != nil {
		return eris.Wrapf(err, "failed to save chunk %v", cp)
	}
	return nil
}

// LoadChunk returns false when the chunk was never saved.
func (r *Storage) LoadChunk(ctx context.Context, cp terrain.ChunkPos) (*terrain.Chunk, bool, error) {
	compressed, err := r.Client.Get(ctx, r.chunkKey(cp)).Bytes()
	if eris.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, eris.Wrapf(err, "failed to load chunk %v", cp)
	}
	bz, err := r.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, eris.Wrapf(err, "corrupt chunk %v", cp)
	}
	c := &terrain.Chunk{}
	if err := c.UnmarshalBinary(bz); err != nil {
		return nil, false, eris.Wrapf(err, "corrupt chunk %v", cp)
	}
	return c, true, nil
}

// SavedChunks lists the positions of every saved chunk.
func (r *Storage) SavedChunks(ctx context.Context) ([]terrain.ChunkPos, error) {
	members, err := r.Client.SMembers(ctx, r.chunkIndexKey()).Result()
	if err != nil {
		return nil, eris.Wrap(err, "failed to list chunks")
	}
	out := make([]terrain.ChunkPos, 0, len(members))
	for _, m := range members {
		var cp terrain.ChunkPos
		if _, err := fmt.Sscanf(m, "%d:%d", &cp.X, &cp.Z); err != nil {
			return nil, eris.Wrapf(err, "bad chunk index entry %q", m)
		}
		out = append(out, cp)
	}
	return out, nil
}

// SaveTasks stores the pending deferred tasks together with the tick they were saved at.
func (r *Storage) SaveTasks(ctx context.Context, tick uint64, records []scheduler.Record) error {
	bz, err := codec.Encode(records)
	if err != nil {
		return err
	}
	pipe := r.Client.TxPipeline()
	pipe.Set(ctx, r.tasksKey(), bz, 0)
	pipe.Set(ctx, r.tickKey(), strconv.FormatUint(tick, 10), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return eris.Wrap(err, "failed to save tasks")
	}
	return nil
}

// LoadTasks returns the saved tick and tasks. A world that was never saved loads as tick 0 with no tasks.
func (r *Storage) LoadTasks(ctx context.Context) (uint64, []scheduler.Record, error) {
	tickStr, err := r.Client.Get(ctx, r.tickKey()).Result()
	if eris.Is(err, redis.Nil) {
		return 0, nil, nil
	} else if err != nil {
		return 0, nil, eris.Wrap(err, "failed to load tick")
	}
	tick, err := strconv.ParseUint(tickStr, 10, 64)
	if err != nil {
		return 0, nil, eris.Wrapf(err, "bad saved tick %q", tickStr)
	}
	bz, err := r.Client.Get(ctx, r.tasksKey()).Bytes()
	if eris.Is(err, redis.Nil) {
		return tick, nil, nil
	} else if err != nil {
		return 0, nil, eris.Wrap(err, "failed to load tasks")
	}
	records, err := codec.Decode[[]scheduler.Record](bz)
	if err != nil {
		return 0, nil, err
	}
	return tick, records, nil
}

func (r *Storage) Close() error {
	log.Info().Msg("Closing storage connection.")
	r.dec.Close()
	if err := r.Client.Close(); err != nil {
		return eris.Wrap(err, "failed to close redis client")
	}
	log.Info().Msg("Successfully closed storage connection.")
	return nil
}

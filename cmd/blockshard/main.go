package main

import (
	"errors"
	"os"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/blockshard"
	"pkg.world.dev/blockshard/blocks"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/telemetry"
	"pkg.world.dev/blockshard/types"
)

const spawnRadius = 16

func main() {
	if err := run(blockshard.WithConsole(os.Stdin), blockshard.WithCORS()); err != nil {
		log.Error().Err(err).Msg("world stopped")
		os.Exit(1)
	}
}

// run returns once the world stops. Telemetry is shut down before it returns, on success and on error.
func run(opts ...blockshard.WorldOption) error {
	w, err := blockshard.NewWorld(opts...)
	if err != nil {
		return err
	}

	cfg := w.Config()
	tm, err := telemetry.New(cfg.TraceAddress, cfg.Profiler, cfg.Namespace)
	if err != nil {
		return eris.Wrap(err, "failed to start telemetry")
	}
	defer tm.Shutdown()

	if err := w.RegisterInitSystems(GenerateSpawn); err != nil {
		return err
	}
	return w.StartGame()
}

// GenerateSpawn lays a flat grass platform around the origin when the world has no ground there yet.
func GenerateSpawn(wCtx engine.Context) error {
	if wCtx.Block(types.P(0, 0, 0)).ID == blocks.Bedrock {
		return nil
	}
	var errs []error
	for x := -spawnRadius; x < spawnRadius; x++ {
		for z := -spawnRadius; z < spawnRadius; z++ {
			errs = append(errs, wCtx.SetBlockSilently(types.P(x, 0, z), types.State(blocks.Bedrock, 0)))
			for y := 1; y < 4; y++ {
				errs = append(errs, wCtx.SetBlockSilently(types.P(x, y, z), types.State(blocks.Dirt, 0)))
			}
			errs = append(errs, wCtx.SetBlockSilently(types.P(x, 4, z), types.State(blocks.Grass, 0)))
		}
	}
	return errors.Join(errs...)
}

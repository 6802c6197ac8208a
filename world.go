package blockshard

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"pkg.world.dev/blockshard/behavior"
	"pkg.world.dev/blockshard/component"
	"pkg.world.dev/blockshard/console"
	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/effect"
	"pkg.world.dev/blockshard/engine"
	"pkg.world.dev/blockshard/intent"
	ecslog "pkg.world.dev/blockshard/log"
	"pkg.world.dev/blockshard/persistence"
	"pkg.world.dev/blockshard/persistence/redis"
	"pkg.world.dev/blockshard/scheduler"
	"pkg.world.dev/blockshard/server"
	"pkg.world.dev/blockshard/statsd"
	"pkg.world.dev/blockshard/system"
	"pkg.world.dev/blockshard/terrain"
	"pkg.world.dev/blockshard/types"
	"pkg.world.dev/blockshard/worldstage"
)

const RedisDialTimeOut = 15

var (
	_ server.Provider = &World{}
	_ ecslog.Loggable = &World{}
)

var ErrRegistrationClosed = eris.New("registration is only allowed before the game starts")

type World struct {
	cfg       WorldConfig
	namespace string
	logger    *zerolog.Logger
	seed      int64
	tuning    engine.Tuning

	// Storage
	storage       *redis.Storage
	store         *ecs.Store
	catalog       *component.Catalog
	hooks         *persistence.Hooks
	terrain       *terrain.Terrain
	blockEntities map[types.Pos]ecs.EntityID

	// Networking
	server         *server.Server
	serverOptions  []server.Option
	serverDisabled bool
	intents        *intent.Queue
	console        *console.Reader
	commands       *console.Table

	// Core modules
	worldStage    *worldstage.Manager
	systemManager *system.Manager
	behaviors     *behavior.Registry
	effects       *effect.Registry
	scheduler     *scheduler.Scheduler
	updates       *updateQueue
	rand          *rand.Rand
	events        []Event

	// mu guards the simulation state. The tick loop holds it for a whole tick; server requests hold it to read.
	mu sync.Mutex

	// Tick
	tick            *atomic.Uint64
	timestamp       *atomic.Uint64
	tickChannel     <-chan time.Time
	tickDoneChannel chan<- uint64
	shutdownCh      chan struct{}
	loopDone        chan struct{}
	stopped         chan struct{}
}

// NewWorld creates a World configured from the environment and opts. Core blocks, items and status effects are
// registered through their plugins before NewWorld returns.
func NewWorld(opts ...WorldOption) (*World, error) {
	serverOptions, worldOptions := separateOptions(opts)

	// Load config. Fallback value is used if it's not set.
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config to start world")
	}
	tuning, err := loadTuning(cfg.TuningFile)
	if err != nil {
		return nil, err
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Logger.Level(level)
	if cfg.LogPretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	world := &World{
		cfg:       cfg,
		namespace: cfg.Namespace,
		logger:    &logger,
		seed:      time.Now().UnixNano(),
		tuning:    tuning,

		// Storage
		store:         ecs.NewStore(),
		hooks:         persistence.NewHooks(),
		terrain:       terrain.New(),
		blockEntities: make(map[types.Pos]ecs.EntityID),

		// Networking
		serverOptions: append([]server.Option{server.WithPort(cfg.Port)}, serverOptions...),
		intents:       intent.NewQueue(),
		commands:      console.NewTable(),

		// Core modules
		worldStage:    worldstage.NewManager(),
		systemManager: system.NewManager(),
		behaviors:     behavior.NewRegistry(),
		effects:       effect.NewRegistry(),
		scheduler:     scheduler.New(),
		updates:       newUpdateQueue(),

		// Tick
		tick:        new(atomic.Uint64),
		timestamp:   new(atomic.Uint64),
		tickChannel: time.Tick(time.Second / time.Duration(cfg.TickRate)), //nolint:staticcheck // the loop never stops
		shutdownCh:  make(chan struct{}),
		loopDone:    make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	// Apply options
	for _, opt := range worldOptions {
		opt(world)
	}
	world.rand = rand.New(rand.NewSource(world.seed)) //nolint:gosec // gameplay randomness

	if world.namespace == "" {
		return nil, eris.New("namespace must not be empty")
	}
	if err := world.tuning.Validate(); err != nil {
		return nil, eris.Wrap(err, "bad tuning")
	}

	if world.storage == nil && cfg.RedisAddress != "" {
		world.storage, err = redis.NewRedisStorage(redis.Options{
			Addr:        cfg.RedisAddress,
			Password:    cfg.RedisPassword,
			DB:          0,                              // use default DB
			DialTimeout: RedisDialTimeOut * time.Second, // Increase startup dial timeout
		}, world.namespace)
		if err != nil {
			return nil, err
		}
	}
	var schemas component.SchemaStorage
	if world.storage != nil {
		schemas = &world.storage.SchemaStorage
	}
	world.catalog = component.NewCatalog(world.store, schemas)
	if err := component.RegisterCore(world.catalog); err != nil {
		return nil, err
	}

	if err := world.registerInternalSystems(); err != nil {
		return nil, err
	}
	if err := world.registerEntityHooks(); err != nil {
		return nil, err
	}
	if err := world.registerCommands(); err != nil {
		return nil, err
	}
	if err := world.registerInternalPlugins(); err != nil {
		return nil, err
	}

	if cfg.StatsdAddress != "" {
		tags := []string{"blockshard_namespace:" + world.namespace}
		if err := statsd.Init(cfg.StatsdAddress, tags); err != nil {
			return nil, eris.Wrap(err, "unable to init statsd")
		}
	} else {
		world.logger.Warn().Msg("statsd is disabled")
	}

	return world, nil
}

// registerInternalSystems registers the systems every world runs, in tick order. Client input is drained first so
// that the rest of the tick sees it.
func (w *World) registerInternalSystems() error {
	if err := system.RegisterGroup(w.systemManager, "server", w, drainConsole, drainIntents); err != nil {
		return err
	}
	for _, sys := range []struct {
		name string
		fn   system.System
	}{
		{"deferred_tasks", w.deferredTaskSystem},
		{"block_updates", w.blockUpdateSystem},
		{"random_ticks", w.randomTickSystem},
	} {
		if err := w.systemManager.RegisterNamed(sys.name, sys.fn); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) deferredTaskSystem(wCtx engine.Context) error {
	ran := w.scheduler.Drain(wCtx)
	statsd.EmitCount("deferred_tasks", int64(ran))
	return nil
}

func (w *World) CurrentTick() uint64 {
	return w.tick.Load()
}

// Config returns the configuration the world was created with.
func (w *World) Config() WorldConfig {
	return w.cfg
}

func (w *World) Namespace() string {
	return w.namespace
}

func (w *World) Logger() *zerolog.Logger {
	return w.logger
}

// Tick performs one game tick: every system runs once in registration order, then the tick counter advances and
// the events emitted during the tick are broadcast.
func (w *World) Tick(ctx context.Context) error {
	// Record tick start time for statsd.
	startTime := time.Now()

	if !w.worldStage.Is(worldstage.Running, worldstage.ShuttingDown) {
		return eris.Errorf("invalid world stage to tick: %s", w.worldStage.Current())
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// This defer is here to catch any panics that occur during the tick. It will log the current tick and the
	// current system that is running.
	defer w.handleTickPanic()

	var span tracer.Span
	span, ctx = tracer.StartSpanFromContext(ctx, "blockshard.tick")
	defer span.Finish()
	statsd.TagSpan(span)

	w.timestamp.Store(uint64(time.Now().Unix()))
	wCtx := newWorldContext(w)

	failures := w.systemManager.RunSystems(ctx, wCtx)
	statsd.EmitCount("system_failures", int64(len(failures)))

	tick := w.tick.Add(1) - 1

	flushEventStart := time.Now()
	w.flushEvents(tick)
	statsd.EmitTickStat(flushEventStart, "flush_events")

	statsd.EmitTickStat(startTime, "full_tick")
	return nil
}

// StartGame freezes registration, loads the saved world, then runs the tick loop and the HTTP server until
// Shutdown is called or the process receives SIGINT or SIGTERM. It blocks until the world has shut down.
func (w *World) StartGame() error {
	// Game stage: Init -> Starting
	if ok := w.worldStage.CompareAndSwap(worldstage.Init, worldstage.Starting); !ok {
		return errors.New("game has already been started")
	}

	w.behaviors.Freeze()
	if err := w.registerBlockEntityHooks(); err != nil {
		return err
	}

	if w.storage != nil {
		if err := w.load(context.Background()); err != nil {
			return eris.Wrap(err, "failed to load the saved world")
		}
	}

	if !w.serverDisabled {
		w.server = server.New(w, w.serverOptions...)
	}

	if len(w.behaviors.Blocks()) == 0 {
		w.logger.Warn().Msg("No blocks registered")
	}
	ecslog.World(w.logger, w, zerolog.InfoLevel)

	// Game stage: Starting -> Running
	w.worldStage.Store(worldstage.Running)

	w.startGameLoop(context.Background(), w.tickChannel, w.tickDoneChannel)
	w.startServer()
	w.handleShutdown()

	<-w.stopped
	return nil
}

func (w *World) startServer() {
	if w.server == nil {
		return
	}
	go func() {
		if err := w.server.Serve(); errors.Is(err, http.ErrServerClosed) {
			w.logger.Info().Err(err).Msgf("the server has been closed: %s", eris.ToString(err, true))
		} else if err != nil {
			w.logger.Error().Err(err).Msgf("the server has failed: %s", eris.ToString(err, true))
		}
	}()
}

func (w *World) startGameLoop(ctx context.Context, tickStart <-chan time.Time, tickDone chan<- uint64) {
	w.logger.Info().Msg("Game loop started")
	go func() {
		defer close(w.loopDone)
		for {
			select {
			case _, ok := <-tickStart:
				if !ok {
					panic("tickStart channel has been closed; tick rate is now unbounded.")
				}
				w.tickTheEngine(ctx, tickDone)
			case <-w.shutdownCh:
				// Intents that arrived before the shutdown still get a tick.
				if w.intents.Len() > 0 {
					w.tickTheEngine(ctx, tickDone)
				}
				if tickDone != nil {
					close(tickDone)
				}
				return
			}
		}
	}()
}

func (w *World) tickTheEngine(ctx context.Context, tickDone chan<- uint64) {
	currTick := w.CurrentTick()
	if err := w.Tick(ctx); err != nil {
		w.logger.Error().Err(err).Msgf("tick %d failed: %s", currTick, eris.ToString(err, true))
	}
	if tickDone != nil {
		tickDone <- currTick
	}
}

func (w *World) IsGameRunning() bool {
	return w.worldStage.Current() == worldstage.Running
}

// Shutdown stops the tick loop after the current tick, saves the world and closes the storage connection.
func (w *World) Shutdown() error {
	w.logger.Info().Msg("Shutting down game loop.")
	if ok := w.worldStage.CompareAndSwap(worldstage.Running, worldstage.ShuttingDown); !ok {
		if w.worldStage.Is(worldstage.ShuttingDown, worldstage.ShutDown) {
			// Some other goroutine has already started the shutdown process. Wait until the world is
			// actually shut down.
			<-w.stopped
			return nil
		}
		return errors.New("shutdown attempted before the world was started")
	}
	defer close(w.stopped)

	close(w.shutdownCh)
	// Block until the world has stopped ticking
	<-w.loopDone

	var errs []error
	if w.server != nil {
		if err := w.server.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	w.logger.Info().Msg("Successfully shut down game loop.")

	if w.storage != nil {
		w.mu.Lock()
		err := w.save(context.Background())
		w.mu.Unlock()
		if err != nil {
			w.logger.Error().Err(err).Msg("Failed to save the world.")
			errs = append(errs, err)
		}
		if err := w.storage.Close(); err != nil {
			w.logger.Error().Err(err).Msg("Failed to close storage connection.")
			errs = append(errs, err)
		}
	}
	w.worldStage.Store(worldstage.ShutDown)
	return errors.Join(errs...)
}

func (w *World) handleShutdown() {
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(signalChannel)
		select {
		case <-signalChannel:
			if err := w.Shutdown(); err != nil {
				w.logger.Err(err).Msgf("There was an error during shutdown.")
			}
		case <-w.stopped:
		}
	}()
}

func (w *World) handleTickPanic() {
	if r := recover(); r != nil {
		w.logger.Error().Msgf(
			"Tick: %d, Current running system: %s",
			w.CurrentTick(),
			w.systemManager.CurrentSystem(),
		)
		panic(r)
	}
}

// SubmitIntent queues a client intent for the next tick. It is safe to call from any goroutine.
func (w *World) SubmitIntent(i intent.Intent) {
	w.intents.Push(i)
}

// Update runs fn on the simulation state between ticks. It is how code outside the tick loop, such as tests and
// tools, changes the world.
func (w *World) Update(fn func(wCtx engine.Context) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(newWorldContext(w))
}

// Info describes the world for the HTTP server and the startup log.
func (w *World) Info() server.WorldInfo {
	w.mu.Lock()
	defer w.mu.Unlock()

	info := server.WorldInfo{
		Namespace:  w.namespace,
		Tick:       w.CurrentTick(),
		Stage:      string(w.worldStage.Current()),
		Entities:   w.store.Len(),
		Components: w.catalog.Names(),
		Systems:    w.systemManager.Names(),
	}
	for _, b := range w.behaviors.Blocks() {
		info.Blocks = append(info.Blocks, server.BlockInfo{ID: b.ID(), Name: nameOf(b)})
	}
	for _, it := range w.behaviors.Items() {
		info.Items = append(info.Items, server.ItemInfo{Key: it.Key(), Name: nameOf(it)})
	}
	return info
}

func nameOf(v any) string {
	if named, ok := v.(behavior.Named); ok {
		return named.Name()
	}
	return ""
}

// Store returns the component store. It must only be touched from systems or through Update.
func (w *World) Store() *ecs.Store {
	return w.store
}

func (w *World) Stage() worldstage.Stage {
	return w.worldStage.Current()
}

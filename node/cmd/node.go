package cmd

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/viatext/vtnode/node/core"
	"github.com/viatext/vtnode/node/display"
	"github.com/viatext/vtnode/node/face"
	"github.com/viatext/vtnode/node/mgmt"
	"github.com/viatext/vtnode/node/table"
	"github.com/viatext/vtnode/std/log"
	"github.com/viatext/vtnode/std/storage"
	"github.com/viatext/vtnode/std/utils"
)

var ErrNoFace = errors.New("no face or listener could be created")

// Node owns the field registry and serves it on every configured face.
// All frames are handled by one loop goroutine.
type Node struct {
	config   *core.Config
	profiler *Profiler

	registry   *table.Registry
	persister  *table.Persister
	dispatcher *mgmt.Dispatcher
	faces      *face.Table
	led        *display.LedPresenter

	streamListener *face.StreamListener
	wsListener     *face.WebSocketListener

	tasks   chan func()
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewNode builds the node from a parsed configuration. Nothing is started.
func NewNode(config *core.Config) (*Node, error) {
	core.StartTimestamp = time.Now()

	registry, persister, err := newRegistry(config, newProbe(config))
	if err != nil {
		return nil, err
	}

	n := &Node{
		config:    config,
		profiler:  NewProfiler(config),
		registry:  registry,
		persister: persister,
		faces:     face.NewTable(config.Node.QueueSize),
		tasks:     make(chan func(), 8),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	presenters := display.Multi{}
	if config.Display.Log {
		presenters = append(presenters, display.LogPresenter{})
	}
	if config.Display.Led.Enabled {
		led, err := display.NewLedPresenter(config.Display.Led)
		if err != nil {
			log.Error(n, "Unable to open status LED", "err", err)
		} else {
			n.led = led
			presenters = append(presenters, led)
		}
	}

	n.dispatcher = mgmt.NewDispatcher(registry, persister, presenters, n.faces)
	return n, nil
}

func (n *Node) String() string {
	return "node"
}

// Start loads the persisted state, opens the faces and starts the loop.
// It does not block.
func (n *Node) Start() error {
	log.Info(n, "Starting node", "version", utils.Version)

	if err := n.profiler.Start(); err != nil {
		log.Warn(n, "Unable to start profiler", "err", err)
	}

	if !n.persister.Load() {
		log.Warn(n, "Store unavailable, starting from defaults", "id", n.registry.ID())
	} else if !n.persister.Seed() {
		log.Warn(n, "Unable to seed store", "id", n.registry.ID())
	}

	if n.startFaces() == 0 {
		return ErrNoFace
	}

	n.running = true
	go n.run()
	return nil
}

// Stop closes every face, ends the loop and releases the store.
// It is safe to call after a failed Start, but only once.
func (n *Node) Stop() {
	log.Info(n, "Stopping node")
	defer log.Info(n, "Stopped node")

	if n.streamListener != nil {
		n.streamListener.Close()
	}
	if n.wsListener != nil {
		n.wsListener.Close()
	}
	n.faces.CloseAll()

	close(n.stop)
	if n.running {
		<-n.done
	}

	if err := n.persister.Close(); err != nil {
		log.Warn(n, "Unable to close store", "err", err)
	}
	if n.led != nil {
		n.led.Close()
	}
	n.profiler.Stop()
}

// SendText broadcasts an unsolicited text frame from the loop.
func (n *Node) SendText(text string) bool {
	return n.post(func() { n.dispatcher.SendText(text) })
}

// StreamAddr is the bound address of the stream listener, if any.
func (n *Node) StreamAddr() net.Addr {
	if n.streamListener == nil {
		return nil
	}
	return n.streamListener.Addr()
}

func (n *Node) startFaces() (count int) {
	faces := &n.config.Faces

	if faces.Serial.Enabled {
		cfg := face.SerialConfig{Port: faces.Serial.Port, Baud: faces.Serial.Baud}
		t, err := face.NewSerialTransport(cfg)
		if err != nil {
			log.Error(n, "Unable to open serial face", "port", cfg.Port, "err", err)
		} else {
			n.faces.Add(t)
			count++
		}
	}

	if faces.Stream.Enabled {
		cfg := face.StreamListenerConfig{Network: faces.Stream.Network, Address: faces.Stream.Address}
		if cfg.Network == "unix" {
			cfg.Address = n.config.ResolveRelPath(cfg.Address)
		}
		l, err := face.NewStreamListener(cfg, n.faces)
		if err != nil {
			log.Error(n, "Unable to create stream listener", "cfg", cfg, "err", err)
		} else {
			n.streamListener = l
			go l.Run()
			count++
			log.Info(n, "Created stream listener", "addr", l.Addr())
		}
	}

	if faces.WebSocket.Enabled {
		cfg := face.WebSocketListenerConfig{Bind: faces.WebSocket.Bind, Port: faces.WebSocket.Port}
		l, err := face.NewWebSocketListener(cfg, n.faces)
		if err != nil {
			log.Error(n, "Unable to create WebSocket listener", "addr", cfg.Addr(), "err", err)
		} else {
			n.wsListener = l
			go func() {
				if err := l.Run(); err != nil {
					log.Error(n, "WebSocket listener failed", "addr", l.Addr(), "err", err)
				}
			}()
			count++
			log.Info(n, "Created WebSocket listener", "addr", l.Addr())
		}
	}

	return count
}

func (n *Node) run() {
	defer close(n.done)

	if n.config.Node.AnnounceOnBoot {
		n.dispatcher.SendHello()
	}

	for {
		select {
		case in := <-n.faces.Inbound():
			n.dispatcher.OnFrame(in.Frame, in.Face)
		case task := <-n.tasks:
			task()
		case <-n.stop:
			c := &n.dispatcher.Counters
			log.Info(n, "Dispatch loop done", "frames", c.Frames.Load(),
				"dropped", c.Dropped.Load()+n.faces.Dropped(), "errors", c.Errors.Load())
			return
		}
	}
}

func (n *Node) post(task func()) bool {
	if !n.running {
		return false
	}
	select {
	case n.tasks <- task:
		return true
	case <-n.done:
		return false
	}
}

func newProbe(config *core.Config) table.Probe {
	stub := table.StubProbe{Start: core.StartTimestamp}
	if config.Node.Probe != "host" {
		return stub
	}
	return table.HostProbe{
		StubProbe: stub,
		DataDir:   filepath.Dir(config.StorageConfig().Path),
		Warnings:  func() uint64 { return log.Default().Warnings() },
	}
}

// newRegistry builds the configured field set and its persister.
func newRegistry(config *core.Config, probe table.Probe) (*table.Registry, *table.Persister, error) {
	defaults, err := config.FieldDefaults()
	if err != nil {
		return nil, nil, err
	}
	fields := table.DefaultFields(probe)
	if err := table.OverrideDefaults(fields, defaults); err != nil {
		return nil, nil, fmt.Errorf("node defaults: %w", err)
	}

	registry := table.NewRegistry(fields)
	storeCfg := config.StorageConfig()
	persister := table.NewPersister(registry, func() (storage.Store, error) {
		return storage.Open(storeCfg)
	})
	return registry, persister, nil
}

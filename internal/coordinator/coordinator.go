// Package coordinator glues the housing pipeline together: raw observations
// from the game host flow through the decoders into the sweep state and the
// ingest queue, and pushed events from the server flow through the
// notification filter into the user's chat.
package coordinator

import (
	"context"
	"log"
	"strconv"
	"time"

	"paissa.dev/internal/catalog"
	"paissa.dev/internal/config"
	"paissa.dev/internal/filter"
	"paissa.dev/internal/format"
	"paissa.dev/internal/protocol"
	"paissa.dev/internal/push"
	"paissa.dev/internal/sweep"
	"paissa.dev/internal/wire"
)

// Player is the local character's identity as the host reports it.
type Player struct {
	ContentID      uint64
	Name           string
	HomeworldID    uint32
	HomeworldName  string
	DatacenterID   uint32
	CurrentWorldID uint32
}

// PlayerSource reports the logged-in character, if any. Host-provided.
type PlayerSource interface {
	LocalPlayer() (Player, bool)
}

// UserSink is where user-visible lines go. Host-provided.
type UserSink interface {
	Print(channel, message string)
	PrintError(message string)
}

// Handler is the set of callbacks the game host invokes. All calls arrive
// on the host's observation thread and must not block; the Coordinator
// pushes I/O onto the ingest and push clients' own goroutines.
type Handler interface {
	OnWardInfo(data []byte, serverTimestamp int32)
	OnPlacardSaleInfo(housingType protocol.HousingType, territoryID uint16, wardID, plotID uint8, apartment int16, data []byte)
	OnLogin()
	OnTick()
}

// GameObserver delivers game events to a Handler. Host-provided.
type GameObserver interface {
	Subscribe(Handler)
}

// Ingester is the slice of the ingest client the coordinator drives.
type Ingester interface {
	Submit(record any)
	Hello(ctx context.Context, player protocol.HelloRequest) error
	NeedsHello() bool
	SetNeedsHello()
}

// ConfigSource returns the current user configuration. The settings window
// may swap it at any time, so it is read per event.
type ConfigSource func() *config.Config

// Coordinator implements Handler for game events and push.Handler for
// server events. Game callbacks are single-threaded per the host contract;
// push callbacks arrive on the websocket read loop and touch neither the
// sweep state nor the ingest queue beyond the thread-safe Submit.
type Coordinator struct {
	state    *sweep.State
	ingester Ingester
	catalog  catalog.Service
	sink     UserSink
	players  PlayerSource
	cfg      ConfigSource
	log      *log.Logger

	now func() time.Time
}

var _ Handler = (*Coordinator)(nil)
var _ push.Handler = (*Coordinator)(nil)

// New builds a Coordinator around its collaborators.
func New(state *sweep.State, ing Ingester, cat catalog.Service, sink UserSink, players PlayerSource, cfg ConfigSource, logger *log.Logger) *Coordinator {
	return &Coordinator{
		state:    state,
		ingester: ing,
		catalog:  cat,
		sink:     sink,
		players:  players,
		cfg:      cfg,
		log:      logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (c *Coordinator) SetClock(now func() time.Time) { c.now = now }

// ResetSweep discards the current sweep, for users sweeping the same
// district twice in a row.
func (c *Coordinator) ResetSweep() {
	c.state.Reset()
}

// OnWardInfo handles one ward snapshot from the game.
func (c *Coordinator) OnWardInfo(data []byte, serverTimestamp int32) {
	cfg := c.cfg()
	if !cfg.Enabled {
		return
	}
	ward, err := wire.DecodeWardInfo(data)
	if err != nil {
		c.printf("dropping ward info: %v", err)
		return
	}

	if c.state.ShouldStartNewSweep(ward) {
		c.state.Start(ward)
		if cfg.AnnounceSweepProgress {
			district := c.districtName(uint16(ward.LandIdent.TerritoryTypeID))
			world, _ := c.catalog.WorldName(uint32(ward.LandIdent.WorldID))
			c.sink.Print(cfg.ChatChannel, "Began sweep for "+district+" ("+world+")")
		}
	}

	if c.state.Contains(ward) {
		c.printf("skipping ward %d, already seen this sweep", ward.LandIdent.WardNumber)
		return
	}
	c.state.Add(ward)
	c.ingester.Submit(protocol.NewWardIngest(ward, c.now().Unix(), serverTimestamp))

	if c.state.IsComplete() {
		c.finishSweep(cfg)
	}
}

func (c *Coordinator) finishSweep(cfg *config.Config) {
	districtID := uint16(c.state.DistrictID())
	district := c.districtName(districtID)
	plots := c.state.OpenPlots()

	if !cfg.AnnounceSweepProgress {
		return
	}
	c.sink.Print(cfg.ChatChannel, "Swept all "+strconv.Itoa(c.state.WardsPerDistrict())+" wards. Thank you for your contribution!")
	c.sink.Print(cfg.ChatChannel, "Here's a summary of open plots in "+district+":")
	c.sink.Print(cfg.ChatChannel, district+": "+strconv.Itoa(len(plots))+" open plots.")
	worldName, _ := c.catalog.WorldName(uint32(c.state.WorldID()))
	for _, p := range plots {
		line := format.Render(format.Plot{
			DistrictName: district,
			WorldName:    worldName,
			WardNumber:   int(p.WardNumber),
			PlotNumber:   int(p.PlotNumber),
			Price:        p.Entry.Price,
			Size:         c.catalog.PlotSize(districtID, int(p.PlotNumber)),
		}, cfg.Format, cfg.CustomTemplate)
		c.sink.Print(cfg.ChatChannel, line)
	}
}

// OnPlacardSaleInfo handles one placard inspection from the game. Only
// unowned houses carry sale data worth forwarding.
func (c *Coordinator) OnPlacardSaleInfo(housingType protocol.HousingType, territoryID uint16, wardID, plotID uint8, apartment int16, data []byte) {
	if housingType != protocol.HousingUnownedHouse {
		return
	}
	if !c.cfg().Enabled {
		return
	}
	sale, err := wire.DecodePlacardSaleInfo(data)
	if err != nil {
		c.printf("dropping placard sale info: %v", err)
		return
	}
	if err := sale.Validate(); err != nil {
		c.printf("dropping placard sale info: %v", err)
		return
	}
	player, ok := c.players.LocalPlayer()
	if !ok {
		return
	}
	c.printf("placard %d %d-%d: purchase=%d tenant=%d availability=%d entries=%d",
		territoryID, wardID+1, plotID+1, sale.PurchaseType, sale.TenantType, sale.AvailabilityType, sale.EntryCount)
	c.ingester.Submit(protocol.NewLotteryIngest(player.CurrentWorldID, territoryID, wardID, plotID, sale, c.now().Unix()))
}

// OnLogin arms the hello latch; the next tick with a player present will
// re-register with the server.
func (c *Coordinator) OnLogin() {
	c.ingester.SetNeedsHello()
}

// OnTick drains the hello latch once a player is available.
func (c *Coordinator) OnTick() {
	if !c.ingester.NeedsHello() {
		return
	}
	player, ok := c.players.LocalPlayer()
	if !ok {
		return
	}
	req := protocol.HelloRequest{
		CID:     player.ContentID,
		Name:    player.Name,
		World:   player.HomeworldName,
		WorldID: player.HomeworldID,
	}
	go func() {
		if err := c.ingester.Hello(context.Background(), req); err != nil {
			c.printf("hello failed: %v", err)
		}
	}()
}

// OnPlotOpen surfaces a newly opened plot, unless the filter says the user
// does not care.
func (c *Coordinator) OnPlotOpen(d protocol.OpenPlotDetail) {
	ev := filter.Event{
		Kind:           filter.KindPlotOpen,
		WorldID:        d.WorldID,
		DistrictID:     d.DistrictID,
		Size:           d.Size,
		PurchaseSystem: d.PurchaseSystem,
		LottoPhase:     d.LottoPhase,
	}
	c.notify(ev, d.WorldID, d.DistrictID, d.WardNumber, d.PlotNumber, d.Price, d.Size)
}

// OnPlotUpdate surfaces a lottery plot that just entered its available
// phase.
func (c *Coordinator) OnPlotUpdate(d protocol.PlotUpdate) {
	lp := d.LottoPhase
	ev := filter.Event{
		Kind:           filter.KindPlotUpdate,
		WorldID:        d.WorldID,
		DistrictID:     d.DistrictID,
		Size:           d.Size,
		PurchaseSystem: d.PurchaseSystem,
		LottoPhase:     &lp,
		PrevLottoPhase: d.PreviousLottoPhase,
	}
	c.notify(ev, d.WorldID, d.DistrictID, d.WardNumber, d.PlotNumber, d.Price, d.Size)
}

// OnPlotSold is decoded and acknowledged but deliberately silent.
func (c *Coordinator) OnPlotSold(d protocol.SoldPlotDetail) {
	c.printf("plot sold: world=%d district=%d %d-%d", d.WorldID, d.DistrictID, d.WardNumber+1, d.PlotNumber+1)
}

func (c *Coordinator) notify(ev filter.Event, worldID, districtID, wardNumber, plotNumber uint16, price uint32, size uint16) {
	cfg := c.cfg()
	player, ok := c.players.LocalPlayer()
	if !ok {
		return
	}
	pc := filter.PlayerContext{HomeworldID: player.HomeworldID, DatacenterID: player.DatacenterID}
	if !filter.Accept(ev, cfg, pc, c.catalog) {
		return
	}
	worldName, _ := c.catalog.WorldName(uint32(worldID))
	line := format.Render(format.Plot{
		DistrictName: c.districtName(districtID),
		WorldName:    worldName,
		WardNumber:   int(wardNumber),
		PlotNumber:   int(plotNumber),
		Price:        price,
		Size:         size,
	}, cfg.Format, cfg.CustomTemplate)
	c.sink.Print(cfg.ChatChannel, "New plot available for purchase on "+worldName+": "+line)
}

func (c *Coordinator) districtName(districtID uint16) string {
	if name, ok := c.catalog.DistrictName(districtID); ok {
		return name
	}
	return "district " + strconv.Itoa(int(districtID))
}

func (c *Coordinator) printf(format string, args ...any) {
	if c.log != nil {
		c.log.Printf(format, args...)
	}
}

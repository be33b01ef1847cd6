// Command autosweep runs the PaissaHouse pipeline without the game attached:
// it registers with PaissaDB, subscribes to the plot event stream, prints the
// notifications the in-game plugin would, and can replay captured packet
// files through the decoders for debugging.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"paissa.dev/internal/catalog"
	"paissa.dev/internal/config"
	"paissa.dev/internal/coordinator"
	"paissa.dev/internal/ingest"
	"paissa.dev/internal/jwt"
	"paissa.dev/internal/protocol"
	"paissa.dev/internal/push"
	"paissa.dev/internal/sweep"
)

func main() {
	var (
		api      = flag.String("api", "https://paissadb.zhu.codes", "PaissaDB api root")
		ws       = flag.String("ws", "wss://paissadb.zhu.codes/ws", "PaissaDB websocket url")
		cfgPath  = flag.String("config", "paissa.yaml", "configuration file")
		gamedata = flag.String("gamedata", "", "optional game-data sqlite file")
		replay   = flag.String("replay", "", "jsonl capture file to replay through the decoders")
		cid      = flag.Uint64("cid", 0, "character content id")
		name     = flag.String("name", "", "character name")
		world    = flag.Uint("world", 0, "homeworld id")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[autosweep] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := (config.FileStore{Path: *cfgPath}).Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	var cat catalog.Service = catalog.NewStatic()
	if *gamedata != "" {
		db, err := catalog.Open(*gamedata)
		if err != nil {
			logger.Fatalf("open game data: %v", err)
		}
		defer db.Close()
		cat = db
	}

	sink := consoleSink{out: os.Stdout, err: os.Stderr}
	ing, err := ingest.New(ingest.Config{BaseURL: *api, Sink: sink, Logger: logger})
	if err != nil {
		logger.Fatalf("ingest client: %v", err)
	}

	player := coordinator.Player{
		ContentID:      *cid,
		Name:           *name,
		HomeworldID:    uint32(*world),
		CurrentWorldID: uint32(*world),
	}
	player.HomeworldName, _ = cat.WorldName(player.HomeworldID)
	player.DatacenterID, _ = cat.WorldDatacenter(player.HomeworldID)

	wards := cat.WardsPerDistrict(config.DistrictMist)
	coord := coordinator.New(sweep.New(wards), ing, cat, sink, staticPlayer{player},
		func() *config.Config { return &cfg }, logger)

	coord.OnLogin()
	coord.OnTick()

	var tokenSource func() string
	if secret := os.Getenv("PAISSA_JWT_SECRET"); secret != "" {
		tokenSource = func() string { return jwt.Mint([]byte(secret), *cid, time.Now()) }
	} else {
		logger.Printf("PAISSA_JWT_SECRET not set, connecting without auth")
	}
	pc := push.New(push.Config{URL: *ws, TokenSource: tokenSource, Handler: coord, Logger: logger})

	if *replay != "" {
		if err := replayCapture(*replay, coord); err != nil {
			logger.Fatalf("replay %s: %v", *replay, err)
		}
	}

	// the hello latch stays armed until the first successful registration,
	// and re-arms on 401s; drain it periodically like the plugin's framework
	// tick would
	tick := time.NewTicker(3 * time.Second)
	defer tick.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for {
		select {
		case <-tick.C:
			coord.OnTick()
		case <-stop:
			logger.Printf("shutting down")
			pc.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			ing.Close(ctx)
			cancel()
			return
		}
	}
}

// consoleSink prints chat lines to stdout and error lines to stderr.
type consoleSink struct {
	out *os.File
	err *os.File
}

func (s consoleSink) Print(channel, message string) {
	if channel != "" {
		fmt.Fprintf(s.out, "[%s] %s\n", channel, message)
		return
	}
	fmt.Fprintln(s.out, message)
}

func (s consoleSink) PrintError(message string) {
	fmt.Fprintln(s.err, message)
}

type staticPlayer struct{ p coordinator.Player }

func (s staticPlayer) LocalPlayer() (coordinator.Player, bool) { return s.p, s.p.ContentID != 0 }

// captureRecord is one line of a jsonl packet capture. Data is base64 in the
// file, which encoding/json handles for []byte.
type captureRecord struct {
	Event           string `json:"event"` // ward_info or placard
	ServerTimestamp int32  `json:"server_timestamp"`
	HousingType     uint8  `json:"housing_type"`
	TerritoryID     uint16 `json:"territory_id"`
	WardID          uint8  `json:"ward_id"`
	PlotID          uint8  `json:"plot_id"`
	Data            []byte `json:"data"`
}

func replayCapture(path string, h coordinator.Handler) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec captureRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		switch rec.Event {
		case "ward_info":
			h.OnWardInfo(rec.Data, rec.ServerTimestamp)
		case "placard":
			h.OnPlacardSaleInfo(protocol.HousingType(rec.HousingType), rec.TerritoryID, rec.WardID, rec.PlotID, -1, rec.Data)
		default:
			return fmt.Errorf("line %d: unknown event %q", line, rec.Event)
		}
	}
	return sc.Err()
}

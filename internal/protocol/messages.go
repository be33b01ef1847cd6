package protocol

import "paissa.dev/internal/wire"

// plot_open (server -> client)
type OpenPlotDetail struct {
	WorldID         uint16            `json:"world_id"`
	DistrictID      uint16            `json:"district_id"`
	WardNumber      uint16            `json:"ward_number"`
	PlotNumber      uint16            `json:"plot_number"`
	Size            uint16            `json:"size"`
	Price           uint32            `json:"price"`
	LastUpdatedTime float64           `json:"last_updated_time"`
	EstTimeOpenMin  float64           `json:"est_time_open_min"`
	EstTimeOpenMax  float64           `json:"est_time_open_max"`
	PurchaseSystem  PurchaseSystem    `json:"purchase_system"`
	LottoEntries    *uint32           `json:"lotto_entries,omitempty"`
	LottoPhase      *AvailabilityType `json:"lotto_phase,omitempty"`
	LottoPhaseUntil *uint32           `json:"lotto_phase_until,omitempty"`
}

// plot_update (server -> client)
type PlotUpdate struct {
	WorldID            uint16            `json:"world_id"`
	DistrictID         uint16            `json:"district_id"`
	WardNumber         uint16            `json:"ward_number"`
	PlotNumber         uint16            `json:"plot_number"`
	Size               uint16            `json:"size"`
	Price              uint32            `json:"price"`
	LastUpdatedTime    float64           `json:"last_updated_time"`
	PurchaseSystem     PurchaseSystem    `json:"purchase_system"`
	LottoEntries       uint32            `json:"lotto_entries"`
	LottoPhase         AvailabilityType  `json:"lotto_phase"`
	PreviousLottoPhase *AvailabilityType `json:"previous_lotto_phase"`
	LottoPhaseUntil    uint32            `json:"lotto_phase_until"`
}

// plot_sold (server -> client)
type SoldPlotDetail struct {
	WorldID         uint16  `json:"world_id"`
	DistrictID      uint16  `json:"district_id"`
	WardNumber      uint16  `json:"ward_number"`
	PlotNumber      uint16  `json:"plot_number"`
	Size            uint16  `json:"size"`
	LastUpdatedTime float64 `json:"last_updated_time"`
	EstTimeSoldMin  float64 `json:"est_time_sold_min"`
	EstTimeSoldMax  float64 `json:"est_time_sold_max"`
}

// POST /hello (client -> server)
type HelloRequest struct {
	CID     uint64 `json:"cid"`
	Name    string `json:"name"`
	World   string `json:"world"`
	WorldID uint32 `json:"worldId"`
}

type HelloResponse struct {
	SessionToken string `json:"session_token"`
}

// GET /worlds/{worldId}/{districtId}
type DistrictDetail struct {
	DistrictID   uint16           `json:"district_id"`
	Name         string           `json:"name"`
	NumOpenPlots uint16           `json:"num_open_plots"`
	OpenPlots    []OpenPlotDetail `json:"open_plots"`
}

// WardIngest is one HOUSING_WARD_INFO record in a POST /ingest batch.
type WardIngest struct {
	EventType       string                `json:"event_type"`
	ClientTimestamp int64                 `json:"client_timestamp"`
	ServerTimestamp int32                 `json:"server_timestamp"`
	LandIdent       wire.LandIdent        `json:"LandIdent"`
	Entries         []wire.HouseInfoEntry `json:"HouseInfoEntries"`
	PurchaseType    *uint8                `json:"purchase_type,omitempty"`
	TenantType      *uint8                `json:"tenant_type,omitempty"`
}

// LotteryIngest is one LOTTERY_INFO record in a POST /ingest batch. The
// unknown placard bytes ride along verbatim.
type LotteryIngest struct {
	EventType       string `json:"event_type"`
	ClientTimestamp int64  `json:"client_timestamp"`
	WorldID         uint32 `json:"world_id"`
	DistrictID      uint16 `json:"district_id"`
	WardNumber      uint8  `json:"ward_number"`
	PlotNumber      uint8  `json:"plot_number"`

	PurchaseType     uint8  `json:"purchase_type"`
	TenantType       uint8  `json:"tenant_type"`
	AvailabilityType uint8  `json:"availability_type"`
	PhaseEndsAt      uint32 `json:"phase_ends_at"`
	EntryCount       uint32 `json:"entry_count"`
	Unknown1         uint8  `json:"unknown1"`
	Unknown2         uint32 `json:"unknown2"`
	Unknown3         uint32 `json:"unknown3"`
	Unknown4         []byte `json:"unknown4"`
}

// NewWardIngest copies a decoded ward snapshot into its ingest record.
func NewWardIngest(w wire.WardInfo, clientTS int64, serverTS int32) WardIngest {
	rec := WardIngest{
		EventType:       EventWardInfo,
		ClientTimestamp: clientTS,
		ServerTimestamp: serverTS,
		LandIdent:       w.LandIdent,
		Entries:         append([]wire.HouseInfoEntry(nil), w.Entries[:]...),
	}
	if w.HasTail {
		pt, tt := w.PurchaseType, w.TenantType
		rec.PurchaseType = &pt
		rec.TenantType = &tt
	}
	return rec
}

// NewLotteryIngest copies a decoded placard into its ingest record.
func NewLotteryIngest(worldID uint32, districtID uint16, ward, plot uint8, p wire.PlacardSaleInfo, clientTS int64) LotteryIngest {
	return LotteryIngest{
		EventType:        EventLotteryInfo,
		ClientTimestamp:  clientTS,
		WorldID:          worldID,
		DistrictID:       districtID,
		WardNumber:       ward,
		PlotNumber:       plot,
		PurchaseType:     p.PurchaseType,
		TenantType:       p.TenantType,
		AvailabilityType: p.AvailabilityType,
		PhaseEndsAt:      p.PhaseEndsAt,
		EntryCount:       p.EntryCount,
		Unknown1:         p.Unknown1,
		Unknown2:         p.Unknown2,
		Unknown3:         p.Unknown3,
		Unknown4:         append([]byte(nil), p.Unknown4[:]...),
	}
}

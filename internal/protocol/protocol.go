// Package protocol defines the JSON messages exchanged with PaissaDB: the
// websocket push frames, the batched ingest records and the plain HTTP
// payloads. Push frames are routed by their "type" field before the payload
// is parsed.
package protocol

import "encoding/json"

// Push message types.
const (
	TypePlotOpen   = "plot_open"
	TypePlotUpdate = "plot_update"
	TypePlotSold   = "plot_sold"
	TypePing       = "ping"
)

// Ingest event types.
const (
	EventWardInfo    = "HOUSING_WARD_INFO"
	EventLotteryInfo = "LOTTERY_INFO"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// PurchaseSystem is the bit set describing how a plot can be bought.
type PurchaseSystem uint8

const (
	PurchaseLottery     PurchaseSystem = 1
	PurchaseFreeCompany PurchaseSystem = 2
	PurchaseIndividual  PurchaseSystem = 4
)

// AvailabilityType is the lottery phase of a plot.
type AvailabilityType uint8

const (
	AvailabilityAvailable       AvailabilityType = 1
	AvailabilityInResultsPeriod AvailabilityType = 2
	AvailabilityUnavailable     AvailabilityType = 3
)

// HousingType tags a placard inspection by ownership kind.
type HousingType uint8

const (
	HousingOwnedHouse HousingType = iota
	HousingUnownedHouse
	HousingFreeCompanyApartment
	HousingApartment
)

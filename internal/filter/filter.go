// Package filter decides which pushed plot events the user actually sees.
// Accept is a pure predicate over the event, the user's configuration and
// the player's identity; running it twice with the same inputs always gives
// the same answer.
package filter

import (
	"paissa.dev/internal/config"
	"paissa.dev/internal/protocol"
)

// Kind is the push event kind being filtered.
type Kind int

const (
	KindPlotOpen Kind = iota
	KindPlotUpdate
	KindPlotSold
)

// Event is the normalized view of a pushed plot event.
type Event struct {
	Kind           Kind
	WorldID        uint16
	DistrictID     uint16
	Size           uint16
	PurchaseSystem protocol.PurchaseSystem

	// Lottery phases; nil when the payload omitted them.
	LottoPhase     *protocol.AvailabilityType
	PrevLottoPhase *protocol.AvailabilityType
}

// PlayerContext is the local player's shard identity.
type PlayerContext struct {
	HomeworldID  uint32
	DatacenterID uint32
}

// DatacenterResolver maps a world to its datacenter. Catalog-backed and
// read-only.
type DatacenterResolver interface {
	WorldDatacenter(worldID uint32) (uint32, bool)
}

// Accept reports whether the event should be surfaced to the user.
func Accept(ev Event, cfg *config.Config, player PlayerContext, dc DatacenterResolver) bool {
	if !cfg.Enabled {
		return false
	}
	if !scopeAllows(ev, cfg.Scope, player, dc) {
		return false
	}
	district, ok := cfg.District(ev.DistrictID)
	if !ok {
		return false
	}
	if !sizeEnabled(district, ev.Size) {
		return false
	}
	var mask protocol.PurchaseSystem
	if district.FreeCompany {
		mask |= protocol.PurchaseFreeCompany
	}
	if district.Individual {
		mask |= protocol.PurchaseIndividual
	}
	if ev.PurchaseSystem&mask == 0 {
		return false
	}
	return kindAllows(ev)
}

func scopeAllows(ev Event, scope config.Scope, player PlayerContext, dc DatacenterResolver) bool {
	switch scope {
	case config.ScopeAll:
		return true
	case config.ScopeDatacenter:
		eventDC, ok := dc.WorldDatacenter(uint32(ev.WorldID))
		return ok && eventDC == player.DatacenterID
	case config.ScopeHomeworld:
		return uint32(ev.WorldID) == player.HomeworldID
	default:
		return false
	}
}

func sizeEnabled(d config.DistrictNotif, size uint16) bool {
	switch size {
	case 0:
		return d.Small
	case 1:
		return d.Medium
	case 2:
		return d.Large
	default:
		return false
	}
}

// kindAllows applies the per-kind gates:
//   - plot_open fires unless the plot is a lottery plot in a phase other
//     than Available (no point pinging an unenterable lottery),
//   - plot_update fires only on the edge where a lottery plot just entered
//     its Available phase,
//   - plot_sold is never user-visible.
func kindAllows(ev Event) bool {
	switch ev.Kind {
	case KindPlotOpen:
		if ev.PurchaseSystem&protocol.PurchaseLottery == 0 {
			return true
		}
		return ev.LottoPhase != nil && *ev.LottoPhase == protocol.AvailabilityAvailable
	case KindPlotUpdate:
		if ev.PurchaseSystem&protocol.PurchaseLottery == 0 {
			return false
		}
		if ev.PrevLottoPhase != nil && *ev.PrevLottoPhase == protocol.AvailabilityAvailable {
			return false
		}
		return ev.LottoPhase != nil && *ev.LottoPhase == protocol.AvailabilityAvailable
	default:
		return false
	}
}

// Package catalog answers read-only questions about game data: world and
// district names, datacenter membership, ward counts and plot sizes. A
// compiled-in table covers the common cases; an optional game-data sqlite
// file overrides it when present (see Open).
package catalog

// Service is the read-only lookup surface the rest of the client consumes.
type Service interface {
	WorldName(worldID uint32) (string, bool)
	WorldDatacenter(worldID uint32) (uint32, bool)
	DistrictName(districtID uint16) (string, bool)
	WardsPerDistrict(districtID uint16) int
	PlotSize(districtID uint16, plotNumber int) uint16
	InitialPrice(districtID uint16, plotNumber int) uint32
}

// defaultWards is the ward count for every district in the current game
// version. It was 24 before the ward expansion.
const defaultWards = 30

// Plot sizes.
const (
	SizeSmall  = 0
	SizeMedium = 1
	SizeLarge  = 2
)

type world struct {
	name       string
	datacenter uint32
}

type district struct {
	name  string
	wards int
}

// Static is the compiled-in catalog.
type Static struct{}

// NewStatic returns the compiled-in catalog.
func NewStatic() Static { return Static{} }

// Datacenter ids as the game numbers them.
const (
	dcAether  = 4
	dcPrimal  = 5
	dcChaos   = 6
	dcLight   = 7
	dcCrystal = 8
)

var staticWorlds = map[uint32]world{
	// Aether
	73: {"Adamantoise", dcAether},
	79: {"Cactuar", dcAether},
	54: {"Faerie", dcAether},
	63: {"Gilgamesh", dcAether},
	40: {"Jenova", dcAether},
	65: {"Midgardsormr", dcAether},
	99: {"Sargatanas", dcAether},
	57: {"Siren", dcAether},
	// Primal
	78: {"Behemoth", dcPrimal},
	93: {"Excalibur", dcPrimal},
	53: {"Exodus", dcPrimal},
	35: {"Famfrit", dcPrimal},
	95: {"Hyperion", dcPrimal},
	55: {"Lamia", dcPrimal},
	64: {"Leviathan", dcPrimal},
	77: {"Ultros", dcPrimal},
	// Crystal
	91: {"Balmung", dcCrystal},
	34: {"Brynhildr", dcCrystal},
	74: {"Coeurl", dcCrystal},
	62: {"Diabolos", dcCrystal},
	81: {"Goblin", dcCrystal},
	75: {"Malboro", dcCrystal},
	37: {"Mateus", dcCrystal},
	41: {"Zalera", dcCrystal},
	// Chaos
	80: {"Cerberus", dcChaos},
	83: {"Louisoix", dcChaos},
	71: {"Moogle", dcChaos},
	39: {"Omega", dcChaos},
	97: {"Ragnarok", dcChaos},
	85: {"Spriggan", dcChaos},
	// Light
	36: {"Lich", dcLight},
	66: {"Odin", dcLight},
	56: {"Phoenix", dcLight},
	67: {"Shiva", dcLight},
	33: {"Twintania", dcLight},
	42: {"Zodiark", dcLight},
}

var staticDistricts = map[uint16]district{
	339: {"Mist", defaultWards},
	340: {"The Lavender Beds", defaultWards},
	341: {"The Goblet", defaultWards},
	641: {"Shirogane", defaultWards},
	979: {"Empyreum", defaultWards},
}

// defaultPlotSizes approximates a district's sixty-plot size layout: mostly
// small, mediums and larges sprinkled where the districts place theirs. The
// game-data sqlite file is authoritative; this keeps summaries sensible
// without it.
var defaultPlotSizes = [60]uint16{
	8:  SizeLarge,
	13: SizeMedium,
	17: SizeMedium,
	23: SizeMedium,
	30: SizeLarge,
	38: SizeMedium,
	43: SizeMedium,
	53: SizeMedium,
	59: SizeLarge,
}

// defaultInitialPrices are the base asking prices by plot size.
var defaultInitialPrices = [3]uint32{3_750_000, 20_000_000, 50_000_000}

func (Static) WorldName(worldID uint32) (string, bool) {
	w, ok := staticWorlds[worldID]
	return w.name, ok
}

func (Static) WorldDatacenter(worldID uint32) (uint32, bool) {
	w, ok := staticWorlds[worldID]
	return w.datacenter, ok
}

func (Static) DistrictName(districtID uint16) (string, bool) {
	d, ok := staticDistricts[districtID]
	return d.name, ok
}

func (Static) WardsPerDistrict(districtID uint16) int {
	if d, ok := staticDistricts[districtID]; ok {
		return d.wards
	}
	return defaultWards
}

func (Static) PlotSize(districtID uint16, plotNumber int) uint16 {
	if plotNumber < 0 || plotNumber >= len(defaultPlotSizes) {
		return SizeSmall
	}
	return defaultPlotSizes[plotNumber]
}

func (Static) InitialPrice(districtID uint16, plotNumber int) uint32 {
	return defaultInitialPrices[Static{}.PlotSize(districtID, plotNumber)]
}

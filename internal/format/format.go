// Package format renders an open plot as a one-line chat message in the
// user's preferred style.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"paissa.dev/internal/config"
)

// Plot carries everything a template can reference. Ward and plot numbers
// are zero-based as they arrive off the wire; rendering is one-based.
type Plot struct {
	DistrictName string
	WorldName    string
	WardNumber   int
	PlotNumber   int
	Price        uint32
	Size         uint16
}

// SizeName maps a plot size to its display name.
func SizeName(size uint16) string {
	switch size {
	case 0:
		return "Small"
	case 1:
		return "Medium"
	default:
		return "Large"
	}
}

// LandSetID maps a territory type id to the land-set sheet row holding its
// plot layout.
func LandSetID(territoryTypeID uint32) uint32 {
	switch territoryTypeID {
	case 641: // shirogane
		return 3
	case 979: // empyreum
		return 4
	default: // mist, lavender beds, goblet are 339-341
		return territoryTypeID - 339
	}
}

// Render produces the chat line for a plot in the configured style. For
// FormatCustom the template's placeholders are substituted; the other styles
// ignore the template.
func Render(p Plot, style config.OutputFormat, template string) string {
	districtNoSpaces := strings.ReplaceAll(p.DistrictName, " ", "")
	wardNum := p.WardNumber + 1
	plotNum := p.PlotNumber + 1
	millions := fmt.Sprintf("%.3f", float64(p.Price)/1_000_000)
	sizeName := SizeName(p.Size)

	switch style {
	case config.FormatPings:
		return fmt.Sprintf("@%s%s %d-%d (%sm)", sizeName, districtNoSpaces, wardNum, plotNum, millions)
	case config.FormatCustom:
		r := strings.NewReplacer(
			"{districtName}", p.DistrictName,
			"{districtNameNoSpaces}", districtNoSpaces,
			"{worldName}", p.WorldName,
			"{wardNum}", strconv.Itoa(wardNum),
			"{plotNum}", strconv.Itoa(plotNum),
			"{housePrice}", strconv.FormatUint(uint64(p.Price), 10),
			"{housePriceMillions}", millions,
			"{houseSizeName}", sizeName,
		)
		return r.Replace(template)
	default:
		return fmt.Sprintf("%s %d-%d (%s, %sm)", p.DistrictName, wardNum, plotNum, sizeName, millions)
	}
}

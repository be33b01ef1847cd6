package format

import (
	"testing"

	"paissa.dev/internal/config"
)

func mistPlot() Plot {
	return Plot{
		DistrictName: "Mist",
		WorldName:    "Adamantoise",
		WardNumber:   0,
		PlotNumber:   0,
		Price:        3_187_000,
		Size:         0,
	}
}

func TestRenderSimple(t *testing.T) {
	got := Render(mistPlot(), config.FormatSimple, "")
	want := "Mist 1-1 (Small, 3.187m)"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderPings(t *testing.T) {
	p := Plot{
		DistrictName: "The Lavender Beds",
		WorldName:    "Coeurl",
		WardNumber:   4,
		PlotNumber:   24,
		Price:        50_000_000,
		Size:         2,
	}
	got := Render(p, config.FormatPings, "")
	want := "@LargeTheLavenderBeds 5-25 (50.000m)"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderCustom(t *testing.T) {
	template := "##forsale {districtNameNoSpaces} w{wardNum} p{plotNum} {housePrice} gil " +
		"({housePriceMillions}m, {houseSizeName}) on {worldName} in {districtName}"
	got := Render(mistPlot(), config.FormatCustom, template)
	want := "##forsale Mist w1 p1 3187000 gil (3.187m, Small) on Adamantoise in Mist"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSizeName(t *testing.T) {
	cases := []struct {
		size uint16
		want string
	}{{0, "Small"}, {1, "Medium"}, {2, "Large"}, {7, "Large"}}
	for _, tc := range cases {
		if got := SizeName(tc.size); got != tc.want {
			t.Fatalf("size %d: got %q want %q", tc.size, got, tc.want)
		}
	}
}

func TestLandSetID(t *testing.T) {
	cases := []struct{ territory, want uint32 }{
		{339, 0}, {340, 1}, {341, 2}, {641, 3}, {979, 4},
	}
	for _, tc := range cases {
		if got := LandSetID(tc.territory); got != tc.want {
			t.Fatalf("territory %d: got %d want %d", tc.territory, got, tc.want)
		}
	}
}

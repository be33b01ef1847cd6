package wire

import (
	"encoding/binary"
	"errors"
	"testing"
)

// encodeWardInfo builds a synthetic ward payload for decoder tests. Owner
// names longer than the field are truncated; the tail is emitted only when
// tailed is true.
func encodeWardInfo(w WardInfo, tailed bool) []byte {
	size := WardInfoSize
	if tailed {
		size = WardInfoSizeTailed
	}
	b := make([]byte, size)
	encodeLandIdent(b, w.LandIdent)
	off := 8
	for i := 0; i < EntriesPerWard; i++ {
		e := w.Entries[i]
		binary.LittleEndian.PutUint32(b[off:], e.Price)
		b[off+4] = byte(e.Flags)
		for j := 0; j < appealCount; j++ {
			b[off+5+j] = byte(e.Appeals[j])
		}
		copy(b[off+8:off+8+ownerNameBytes], e.OwnerName)
		off += entrySize
	}
	if tailed {
		b[WardInfoSize] = w.PurchaseType
		b[WardInfoSize+2] = w.TenantType
	}
	return b
}

func encodeLandIdent(b []byte, li LandIdent) {
	binary.LittleEndian.PutUint16(b[0:], uint16(li.LandID))
	binary.LittleEndian.PutUint16(b[2:], uint16(li.WardNumber))
	binary.LittleEndian.PutUint16(b[4:], uint16(li.TerritoryTypeID))
	binary.LittleEndian.PutUint16(b[6:], uint16(li.WorldID))
}

func encodePlacardSaleInfo(p PlacardSaleInfo) []byte {
	b := make([]byte, PlacardSaleInfoSize)
	b[0] = p.PurchaseType
	b[1] = p.TenantType
	b[2] = p.AvailabilityType
	b[3] = p.Unknown1
	binary.LittleEndian.PutUint32(b[4:], p.Unknown2)
	binary.LittleEndian.PutUint32(b[8:], p.PhaseEndsAt)
	binary.LittleEndian.PutUint32(b[12:], p.Unknown3)
	binary.LittleEndian.PutUint32(b[16:], p.EntryCount)
	copy(b[16+4:], p.Unknown4[:])
	return b
}

func sampleWard() WardInfo {
	w := WardInfo{
		LandIdent: LandIdent{LandID: -1, WardNumber: 4, TerritoryTypeID: 339, WorldID: 73},
	}
	for i := range w.Entries {
		w.Entries[i] = HouseInfoEntry{
			Price:   3_187_000,
			Flags:   FlagPlotOwned | FlagHouseBuilt,
			Appeals: [3]int8{1, -1, 20},
		}
		w.Entries[i].OwnerName = "Totono Totono"
	}
	// plot 30 is open
	w.Entries[30] = HouseInfoEntry{Price: 50_000_000, Flags: FlagVisitorsAllowed}
	return w
}

func TestDecodeWardInfoRoundTrip(t *testing.T) {
	want := sampleWard()
	got, err := DecodeWardInfo(encodeWardInfo(want, false))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.HasTail {
		t.Fatalf("unexpected tail on %d-byte payload", WardInfoSize)
	}
	if got.LandIdent != want.LandIdent {
		t.Fatalf("land ident: got %+v want %+v", got.LandIdent, want.LandIdent)
	}
	for i := range want.Entries {
		if got.Entries[i] != want.Entries[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got.Entries[i], want.Entries[i])
		}
	}
}

func TestDecodeWardInfoTailedLayout(t *testing.T) {
	want := sampleWard()
	want.PurchaseType = PurchaseTypeLottery
	want.TenantType = TenantFreeCompany | TenantPersonal
	got, err := DecodeWardInfo(encodeWardInfo(want, true))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.HasTail {
		t.Fatalf("expected tail on %d-byte payload", WardInfoSizeTailed)
	}
	if got.PurchaseType != want.PurchaseType || got.TenantType != want.TenantType {
		t.Fatalf("tail: got purchase=%d tenant=%d", got.PurchaseType, got.TenantType)
	}
}

func TestDecodeWardInfoClearsUnownedOwnerName(t *testing.T) {
	w := sampleWard()
	// stale owner bytes on an unowned plot must be dropped
	w.Entries[30].OwnerName = "Stale Owner"
	got, err := DecodeWardInfo(encodeWardInfo(w, false))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Entries[30].OwnerName != "" {
		t.Fatalf("owner name on unowned plot: %q", got.Entries[30].OwnerName)
	}
	if got.Entries[0].OwnerName != "Totono Totono" {
		t.Fatalf("owner name on owned plot: %q", got.Entries[0].OwnerName)
	}
}

func TestDecodeWardInfoShortBuffer(t *testing.T) {
	for _, n := range []int{0, 8, WardInfoSize - 1} {
		if _, err := DecodeWardInfo(make([]byte, n)); !errors.Is(err, ErrShortBuffer) {
			t.Fatalf("len=%d: got %v, want ErrShortBuffer", n, err)
		}
	}
	// 2656..2663 is a valid un-tailed payload
	if _, err := DecodeWardInfo(make([]byte, WardInfoSizeTailed-1)); err != nil {
		t.Fatalf("len=%d: %v", WardInfoSizeTailed-1, err)
	}
}

func TestDecodePlacardSaleInfoRoundTrip(t *testing.T) {
	want := PlacardSaleInfo{
		PurchaseType:     PurchaseTypeLottery,
		TenantType:       TenantPersonal,
		AvailabilityType: AvailabilityAvailable,
		Unknown1:         7,
		Unknown2:         0xDEADBEEF,
		PhaseEndsAt:      1_650_000_000,
		Unknown3:         42,
		EntryCount:       113,
	}
	// only 12 trailing bytes fit a minimum-size payload
	copy(want.Unknown4[:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	got, err := DecodePlacardSaleInfo(encodePlacardSaleInfo(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestDecodePlacardSaleInfoShortBuffer(t *testing.T) {
	if _, err := DecodePlacardSaleInfo(make([]byte, PlacardSaleInfoSize-1)); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("got %v, want ErrShortBuffer", err)
	}
}

func TestPlacardSaleInfoValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*PlacardSaleInfo)
		wantErr bool
	}{
		{"valid fcfs", func(p *PlacardSaleInfo) { p.PurchaseType = PurchaseTypeFCFS }, false},
		{"valid lottery", func(p *PlacardSaleInfo) { p.PurchaseType = PurchaseTypeLottery }, false},
		{"zero purchase", func(p *PlacardSaleInfo) { p.PurchaseType = 0 }, true},
		{"purchase out of range", func(p *PlacardSaleInfo) { p.PurchaseType = 9 }, true},
		{"zero tenant", func(p *PlacardSaleInfo) { p.TenantType = 0 }, true},
		{"tenant out of range", func(p *PlacardSaleInfo) { p.TenantType = 8 }, true},
		{"zero availability", func(p *PlacardSaleInfo) { p.AvailabilityType = 0 }, true},
		{"availability out of range", func(p *PlacardSaleInfo) { p.AvailabilityType = 4 }, true},
	}
	for _, tc := range cases {
		p := PlacardSaleInfo{
			PurchaseType:     PurchaseTypeFCFS,
			TenantType:       TenantPersonal,
			AvailabilityType: AvailabilityUnavailable,
		}
		tc.mutate(&p)
		err := p.Validate()
		if tc.wantErr && !errors.Is(err, ErrBadEnumValue) {
			t.Fatalf("%s: got %v, want ErrBadEnumValue", tc.name, err)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

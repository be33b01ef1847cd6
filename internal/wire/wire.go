// Package wire decodes the binary housing payloads the game client receives.
//
// Layouts are walked with an explicit little-endian cursor rather than any
// reflective codec so that offset changes between game versions stay
// auditable. Unknown regions are carried as opaque bytes; interpreting field
// values is the caller's job.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShortBuffer means the payload is smaller than the fixed layout.
	ErrShortBuffer = errors.New("wire: short buffer")
	// ErrBadEnumValue means a decoded field is outside its known value set.
	ErrBadEnumValue = errors.New("wire: bad enum value")
)

const (
	// WardInfoSize is the classic HousingWardInfo payload size.
	WardInfoSize = 2656
	// WardInfoSizeTailed is the payload size once the trailing
	// purchase/tenant bytes were added to the packet.
	WardInfoSizeTailed = 2664
	// PlacardSaleInfoSize is the fixed PlacardSaleInfo payload size.
	PlacardSaleInfoSize = 32

	// EntriesPerWard is the number of house entries in every ward packet.
	EntriesPerWard = 60

	entrySize      = 44 // u32 price + u8 flags + 3x i8 appeal + 32 byte owner
	ownerNameBytes = 32
	appealCount    = 3
)

// HousingFlags is the per-plot bit set inside a ward snapshot.
type HousingFlags uint8

const (
	FlagPlotOwned HousingFlags = 1 << iota
	FlagVisitorsAllowed
	FlagHasSearchComment
	FlagHouseBuilt
	FlagOwnedByFC
)

// LandIdent identifies a plot-or-ward location. LandID is -1 for a
// ward-wide payload.
type LandIdent struct {
	LandID          int16  `json:"LandId"`
	WardNumber      int16  `json:"WardNumber"`
	TerritoryTypeID int16  `json:"TerritoryTypeId"`
	WorldID         int16  `json:"WorldId"`
}

// HouseInfoEntry is one plot's public state inside a ward snapshot.
// OwnerName is empty unless FlagPlotOwned is set.
type HouseInfoEntry struct {
	Price     uint32       `json:"HousePrice"`
	Flags     HousingFlags `json:"InfoFlags"`
	Appeals   [3]int8      `json:"HouseAppeals"`
	OwnerName string       `json:"EstateOwnerName"`
}

// Owned reports whether the plot has an owner.
func (e HouseInfoEntry) Owned() bool { return e.Flags&FlagPlotOwned != 0 }

// WardInfo is a full ward snapshot: a LandIdent plus sixty entries, and the
// trailing purchase/tenant bytes when the longer layout is present.
type WardInfo struct {
	LandIdent LandIdent
	Entries   [EntriesPerWard]HouseInfoEntry

	// Trailing fields, valid only when HasTail is true.
	HasTail      bool
	PurchaseType uint8
	TenantType   uint8
}

// PlacardSaleInfo is the sale metadata pushed when an unowned plot's placard
// is inspected. The UnknownN fields have no documented meaning and are kept
// verbatim so upstream submissions can forward them.
type PlacardSaleInfo struct {
	PurchaseType     uint8    `json:"purchase_type"`
	TenantType       uint8    `json:"tenant_type"`
	AvailabilityType uint8    `json:"availability_type"`
	Unknown1         uint8    `json:"unknown1"`
	Unknown2         uint32   `json:"unknown2"`
	PhaseEndsAt      uint32   `json:"phase_ends_at"`
	Unknown3         uint32   `json:"unknown3"`
	EntryCount       uint32   `json:"entry_count"`
	Unknown4         [16]byte `json:"-"`
}

// Placard enum values.
const (
	PurchaseTypeFCFS    = 1
	PurchaseTypeLottery = 2

	TenantFreeCompany = 1
	TenantPersonal    = 2

	AvailabilityAvailable       = 1
	AvailabilityInResultsPeriod = 2
	AvailabilityUnavailable     = 3
)

// Validate checks the enum-valued fields. Decoding stays lenient; callers
// that intend to act on the values run this first.
func (p PlacardSaleInfo) Validate() error {
	if p.PurchaseType < PurchaseTypeFCFS || p.PurchaseType > PurchaseTypeLottery {
		return fmt.Errorf("%w: purchase_type=%d", ErrBadEnumValue, p.PurchaseType)
	}
	if p.TenantType == 0 || p.TenantType > TenantFreeCompany|TenantPersonal {
		return fmt.Errorf("%w: tenant_type=%d", ErrBadEnumValue, p.TenantType)
	}
	if p.AvailabilityType < AvailabilityAvailable || p.AvailabilityType > AvailabilityUnavailable {
		return fmt.Errorf("%w: availability_type=%d", ErrBadEnumValue, p.AvailabilityType)
	}
	return nil
}

// cursor walks a byte slice little-endian. Bounds are checked up front by
// the decode entry points, so reads never fault mid-walk.
type cursor struct {
	b   []byte
	off int
}

func (c *cursor) u8() uint8 {
	v := c.b[c.off]
	c.off++
	return v
}

func (c *cursor) i8() int8 { return int8(c.u8()) }

func (c *cursor) i16() int16 {
	v := binary.LittleEndian.Uint16(c.b[c.off:])
	c.off += 2
	return int16(v)
}

func (c *cursor) u32() uint32 {
	v := binary.LittleEndian.Uint32(c.b[c.off:])
	c.off += 4
	return v
}

func (c *cursor) bytes(n int) []byte {
	v := c.b[c.off : c.off+n]
	c.off += n
	return v
}

func (c *cursor) skip(n int) { c.off += n }

// DecodeWardInfo decodes a HousingWardInfo payload. The buffer must be at
// least WardInfoSize bytes; the trailing purchase/tenant fields are read when
// the tailed layout is present.
func DecodeWardInfo(b []byte) (WardInfo, error) {
	var w WardInfo
	if len(b) < WardInfoSize {
		return w, fmt.Errorf("%w: ward info needs %d bytes, got %d", ErrShortBuffer, WardInfoSize, len(b))
	}
	c := &cursor{b: b}
	w.LandIdent = decodeLandIdent(c)
	for i := 0; i < EntriesPerWard; i++ {
		e := &w.Entries[i]
		e.Price = c.u32()
		e.Flags = HousingFlags(c.u8())
		for j := 0; j < appealCount; j++ {
			e.Appeals[j] = c.i8()
		}
		e.OwnerName = trimOwnerName(c.bytes(ownerNameBytes))
		if !e.Owned() {
			// the game leaves stale bytes here for unowned plots
			e.OwnerName = ""
		}
	}
	if len(b) >= WardInfoSizeTailed {
		c.off = WardInfoSize
		w.PurchaseType = c.u8()
		c.skip(1)
		w.TenantType = c.u8()
		c.skip(1)
		c.skip(4)
		w.HasTail = true
	}
	return w, nil
}

// DecodePlacardSaleInfo decodes a PlacardSaleInfo payload of at least
// PlacardSaleInfoSize bytes.
func DecodePlacardSaleInfo(b []byte) (PlacardSaleInfo, error) {
	var p PlacardSaleInfo
	if len(b) < PlacardSaleInfoSize {
		return p, fmt.Errorf("%w: placard sale info needs %d bytes, got %d", ErrShortBuffer, PlacardSaleInfoSize, len(b))
	}
	c := &cursor{b: b}
	p.PurchaseType = c.u8()
	p.TenantType = c.u8()
	p.AvailabilityType = c.u8()
	p.Unknown1 = c.u8()
	p.Unknown2 = c.u32()
	p.PhaseEndsAt = c.u32()
	p.Unknown3 = c.u32()
	p.EntryCount = c.u32()
	// the struct nominally carries 16 trailing bytes but a minimum-size
	// payload only has 12 left; take whatever is there, short reads included
	tail := len(c.b) - c.off
	if tail > len(p.Unknown4) {
		tail = len(p.Unknown4)
	}
	copy(p.Unknown4[:], c.bytes(tail))
	return p, nil
}

func decodeLandIdent(c *cursor) LandIdent {
	return LandIdent{
		LandID:          c.i16(),
		WardNumber:      c.i16(),
		TerritoryTypeID: c.i16(),
		WorldID:         c.i16(),
	}
}

func trimOwnerName(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

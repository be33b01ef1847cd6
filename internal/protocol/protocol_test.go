package protocol

import (
	"encoding/json"
	"testing"

	"paissa.dev/internal/wire"
)

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"plot_open","data":{"world_id":73}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != TypePlotOpen {
		t.Fatalf("type: %q", m.Type)
	}
	var d OpenPlotDetail
	if err := json.Unmarshal(m.Data, &d); err != nil {
		t.Fatalf("data: %v", err)
	}
	if d.WorldID != 73 {
		t.Fatalf("world_id: %d", d.WorldID)
	}
}

func TestValidatePayloadSamples(t *testing.T) {
	open := `{
	  "world_id": 73, "district_id": 339, "ward_number": 0, "plot_number": 0,
	  "size": 0, "price": 3187000, "last_updated_time": 1650000000.0,
	  "est_time_open_min": 0, "est_time_open_max": 7200,
	  "purchase_system": 5, "lotto_entries": 3, "lotto_phase": 1,
	  "lotto_phase_until": 1650050000
	}`
	if err := ValidatePayload(TypePlotOpen, json.RawMessage(open)); err != nil {
		t.Fatalf("plot_open: %v", err)
	}

	update := `{
	  "world_id": 73, "district_id": 641, "ward_number": 4, "plot_number": 24,
	  "size": 1, "price": 16000000, "last_updated_time": 1650000000.0,
	  "purchase_system": 1, "lotto_entries": 10, "lotto_phase": 1,
	  "previous_lotto_phase": 3, "lotto_phase_until": 1650050000
	}`
	if err := ValidatePayload(TypePlotUpdate, json.RawMessage(update)); err != nil {
		t.Fatalf("plot_update: %v", err)
	}

	sold := `{
	  "world_id": 73, "district_id": 340, "ward_number": 2, "plot_number": 7,
	  "size": 2, "last_updated_time": 1650000000.0,
	  "est_time_sold_min": 0, "est_time_sold_max": 600
	}`
	if err := ValidatePayload(TypePlotSold, json.RawMessage(sold)); err != nil {
		t.Fatalf("plot_sold: %v", err)
	}
}

func TestValidatePayloadRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		typ  string
		data string
	}{
		{"missing required", TypePlotOpen, `{"world_id":73}`},
		{"wrong type", TypePlotOpen, `{"world_id":"adamantoise","district_id":339,"ward_number":0,"plot_number":0,"size":0,"price":0,"purchase_system":1}`},
		{"bad phase enum", TypePlotUpdate, `{"world_id":73,"district_id":339,"ward_number":0,"plot_number":0,"size":0,"price":0,"purchase_system":1,"lotto_phase":9}`},
		{"not json", TypePlotSold, `{`},
	}
	for _, tc := range cases {
		if err := ValidatePayload(tc.typ, json.RawMessage(tc.data)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidatePayloadSkipsUnknownTypes(t *testing.T) {
	if err := ValidatePayload(TypePing, json.RawMessage(`null`)); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := ValidatePayload("future_type", json.RawMessage(`{"anything":true}`)); err != nil {
		t.Fatalf("unknown type: %v", err)
	}
}

func TestNewWardIngestCarriesTail(t *testing.T) {
	w := wire.WardInfo{
		LandIdent:    wire.LandIdent{LandID: -1, WardNumber: 3, TerritoryTypeID: 641, WorldID: 73},
		HasTail:      true,
		PurchaseType: wire.PurchaseTypeLottery,
		TenantType:   wire.TenantFreeCompany | wire.TenantPersonal,
	}
	rec := NewWardIngest(w, 1_650_000_000, 1_649_999_990)
	if rec.EventType != EventWardInfo {
		t.Fatalf("event_type: %q", rec.EventType)
	}
	if len(rec.Entries) != wire.EntriesPerWard {
		t.Fatalf("entries: %d", len(rec.Entries))
	}
	if rec.PurchaseType == nil || *rec.PurchaseType != wire.PurchaseTypeLottery {
		t.Fatalf("purchase_type not carried")
	}
	if rec.TenantType == nil || *rec.TenantType != wire.TenantFreeCompany|wire.TenantPersonal {
		t.Fatalf("tenant_type not carried")
	}

	w.HasTail = false
	rec = NewWardIngest(w, 0, 0)
	if rec.PurchaseType != nil || rec.TenantType != nil {
		t.Fatalf("tail fields present on classic layout")
	}
}

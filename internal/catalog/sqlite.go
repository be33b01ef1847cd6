package catalog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB is a catalog backed by a game-data sqlite file, falling back to the
// compiled-in tables for anything the file does not carry. The file is
// opened read-only; it is typically extracted from the game's own sheets.
//
// Expected tables:
//
//	worlds(id INTEGER PRIMARY KEY, name TEXT, datacenter_id INTEGER)
//	districts(id INTEGER PRIMARY KEY, name TEXT, wards INTEGER)
//	plot_sizes(district_id INTEGER, plot_number INTEGER, size INTEGER,
//	           initial_price INTEGER, PRIMARY KEY(district_id, plot_number))
type DB struct {
	db       *sql.DB
	fallback Static
}

// Open opens a game-data sqlite file read-only.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog: empty db path")
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (c *DB) Close() error { return c.db.Close() }

func (c *DB) WorldName(worldID uint32) (string, bool) {
	var name string
	err := c.db.QueryRow(`SELECT name FROM worlds WHERE id = ?`, worldID).Scan(&name)
	if err != nil {
		return c.fallback.WorldName(worldID)
	}
	return name, true
}

func (c *DB) WorldDatacenter(worldID uint32) (uint32, bool) {
	var dc uint32
	err := c.db.QueryRow(`SELECT datacenter_id FROM worlds WHERE id = ?`, worldID).Scan(&dc)
	if err != nil {
		return c.fallback.WorldDatacenter(worldID)
	}
	return dc, true
}

func (c *DB) DistrictName(districtID uint16) (string, bool) {
	var name string
	err := c.db.QueryRow(`SELECT name FROM districts WHERE id = ?`, districtID).Scan(&name)
	if err != nil {
		return c.fallback.DistrictName(districtID)
	}
	return name, true
}

func (c *DB) WardsPerDistrict(districtID uint16) int {
	var wards int
	err := c.db.QueryRow(`SELECT wards FROM districts WHERE id = ?`, districtID).Scan(&wards)
	if err != nil || wards <= 0 {
		return c.fallback.WardsPerDistrict(districtID)
	}
	return wards
}

func (c *DB) PlotSize(districtID uint16, plotNumber int) uint16 {
	var size uint16
	err := c.db.QueryRow(
		`SELECT size FROM plot_sizes WHERE district_id = ? AND plot_number = ?`,
		districtID, plotNumber,
	).Scan(&size)
	if err != nil {
		return c.fallback.PlotSize(districtID, plotNumber)
	}
	return size
}

func (c *DB) InitialPrice(districtID uint16, plotNumber int) uint32 {
	var price uint32
	err := c.db.QueryRow(
		`SELECT initial_price FROM plot_sizes WHERE district_id = ? AND plot_number = ?`,
		districtID, plotNumber,
	).Scan(&price)
	if err != nil || price == 0 {
		return c.fallback.InitialPrice(districtID, plotNumber)
	}
	return price
}

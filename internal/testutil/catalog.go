package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PLCSeed describes one controller and its place in the hierarchy.
type PLCSeed struct {
	Site            string
	Cell            string
	Equipment       string
	Tag             string
	Description     string
	Make            string
	Model           string
	IPAddress       string
	FirmwareVersion string
}

// SeedPLC inserts the PLC, creating its site, cell and equipment on first use,
// and returns the PLC id. The search view is not refreshed.
func SeedPLC(ctx context.Context, t *testing.T, pool *pgxpool.Pool, seed PLCSeed) string {
	t.Helper()

	var siteID, cellID, equipmentID, plcID string
	err := pool.QueryRow(ctx,
		`INSERT INTO sites (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id::text`,
		seed.Site,
	).Scan(&siteID)
	if err != nil {
		t.Fatalf("failed to seed site: %v", err)
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO cells (site_id, name) VALUES ($1, $2)
		 ON CONFLICT (site_id, name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id::text`,
		siteID, seed.Cell,
	).Scan(&cellID)
	if err != nil {
		t.Fatalf("failed to seed cell: %v", err)
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO equipment (cell_id, name) VALUES ($1, $2) RETURNING id::text`,
		cellID, seed.Equipment,
	).Scan(&equipmentID)
	if err != nil {
		t.Fatalf("failed to seed equipment: %v", err)
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO plcs (equipment_id, tag, description, make, model, ip_address, firmware_version)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::inet, NULLIF($7, ''))
		 RETURNING id::text`,
		equipmentID, seed.Tag, seed.Description, seed.Make, seed.Model, seed.IPAddress, seed.FirmwareVersion,
	).Scan(&plcID)
	if err != nil {
		t.Fatalf("failed to seed plc: %v", err)
	}

	return plcID
}

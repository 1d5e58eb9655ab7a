package chanselect

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type ModuleMapEntry struct {
	Ieta   int `db:"ieta"`
	Iphi   int `db:"iphi"`
	Depth  int `db:"depth"`
	Module int `db:"module"`
	Rack   int `db:"rack"`
}

// LoadHardwareMap reads the channel to module/rack assignment valid for
// the given run.
func LoadHardwareMap(db *sqlx.DB, runNumber int) (*TableHardwareMap, error) {
	query := "SELECT ieta, iphi, depth, module, rack FROM HcalModuleMap WHERE MinRun <= ? AND MaxRun >= ? ORDER BY module, depth, ieta, iphi"

	if configuration.Verbosity > 0 {
		logger.Info("Hardware module map read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s (run %d)", query, runNumber)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	hw := NewTableHardwareMap()
	nRows := 0
	for rows.Next() {
		entry := ModuleMapEntry{}
		if err := rows.StructScan(&entry); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		id := ChannelID{Depth: entry.Depth, Ieta: entry.Ieta, Iphi: entry.Iphi}
		if err := hw.Add(id, entry.Module, entry.Rack); err != nil {
			return nil, fmt.Errorf("error in module map for run %d: %w", runNumber, err)
		}
		nRows++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating DB rows: %w", err)
	}
	if nRows == 0 {
		return nil, fmt.Errorf("no module map found for run %d", runNumber)
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Read %d channels in %d modules and %d racks", nRows, hw.NumModules(), hw.NumRacks())
		logger.Info(message, "database")
	}
	return hw, nil
}

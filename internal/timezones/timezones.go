package timezones

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed data.json
var rawData []byte

// Info is the timezone table shipped to the client: POSIX zone strings,
// shared DST rule sets and aliases pointing at canonical zone names.
type Info struct {
	Zones map[string]string `json:"zones"`
	Rules map[string]string `json:"rules"`
	Links map[string]string `json:"links"`
}

var (
	loadOnce sync.Once
	table    Info
	loadErr  error
)

func load() {
	loadErr = json.Unmarshal(rawData, &table)
	if loadErr != nil {
		loadErr = fmt.Errorf("timezones: parse data: %w", loadErr)
	}
}

// Table returns the embedded timezone info.
func Table() (Info, error) {
	loadOnce.Do(load)
	return table, loadErr
}

// Canonical resolves a zone alias to its canonical name. Unknown names pass
// through unchanged.
func Canonical(name string) string {
	loadOnce.Do(load)
	if loadErr != nil {
		return name
	}
	if target, ok := table.Links[name]; ok {
		return target
	}
	return name
}

// Known reports whether the name, or the zone it aliases, is in the table.
func Known(name string) bool {
	loadOnce.Do(load)
	if loadErr != nil {
		return false
	}
	_, ok := table.Zones[Canonical(name)]
	return ok
}

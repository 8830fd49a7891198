package store

import "slices"

// Tables lists the application tables in schema order.
var Tables = []string{"areas", "categories", "folders", "items", "storage_locations", "activity_log"}

// IsTable reports whether name is one of the application tables.
func IsTable(name string) bool {
	return slices.Contains(Tables, name)
}

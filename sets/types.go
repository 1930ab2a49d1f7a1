// Package sets implements the Set data-type layer: SADD/SREM/SINTER and the
// rest of the Redis Set command surface, built on top of the storage
// package's ordered, snapshot-capable, multi-column-family engine.
package sets

import "github.com/pikiwidb/storage"

// TypeTag identifies which Redis data type a MetaRecord describes. Only
// TypeSet is implemented here; the others exist so MetaValue's on-disk
// layout and WRONGTYPE reporting match a system that stores every data type
// through the same meta-record discipline.
type TypeTag byte

const (
	TypeString TypeTag = iota
	TypeList
	TypeHash
	TypeSet
	TypeZSet
)

func (t TypeTag) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeList:
		return "List"
	case TypeHash:
		return "Hash"
	case TypeSet:
		return "Set"
	case TypeZSet:
		return "ZSet"
	default:
		return "none"
	}
}

// Column families this package reads and writes. Registered with
// storage.Open via storage.WithColumnFamilies(sets.ColumnFamilies()...).
const (
	MetaCF      storage.ColumnFamily = "meta"
	SetsDataCF  storage.ColumnFamily = "sets_data"
	ScanCF      storage.ColumnFamily = "scan_cursors"
)

// ColumnFamilies returns every column family the Set layer needs, in the
// order storage.Open should create them.
func ColumnFamilies() []storage.ColumnFamily {
	return []storage.ColumnFamily{MetaCF, SetsDataCF, ScanCF}
}

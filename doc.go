// Package storage implements a small, ordered, multi-column-family,
// snapshot-capable key-value engine: the in-process stand-in for the
// external LSM store (RocksDB/Pebble in the shipped server) that the
// sets package is built against. See Store for the contract and Engine
// for the reference implementation.
package storage

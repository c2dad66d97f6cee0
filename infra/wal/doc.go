// Package wal is the engine's write-ahead log of accepted commands.
// Every place, cancel, cancel-at-price and market-take command is framed,
// checksummed and appended before the book mutates, so replaying the log
// in sequence order reconstructs an identical book and trade journal
// (matching is deterministic for a fixed command sequence).
//
// Frame layout: [type:1][seq:8][time:8][len:4][payload][crc:4].
// The log is split into size-rotated segment files; segments whose highest
// sequence is covered by a snapshot can be truncated.
package wal

// Package storage defines the contract between the catalog and a removable
// storage volume.
//
// A Provider exposes one volume (a memory card, a USB stick, an S3 prefix
// standing in for one). Paths are opaque, slash-separated strings relative to
// the volume root; RootPath denotes the root itself. Implementations live in
// the local, memory and s3 subpackages.
//
// ErrVolumeAbsent is the only failure the catalog recovers from: "no card
// inserted" is a normal state. Every other error is treated as fatal for the
// operation that produced it.
package storage

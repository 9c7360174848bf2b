package repository

// Kind identifies a storage backend implementation.
type Kind string

const (
	KindRemote Kind = "remote"
	KindLocal  Kind = "local"
)

package core

// StateBlob is an opaque serialized snapshot produced by a Stateful component.
type StateBlob []byte

// Stateful is implemented by components whose state can be captured and rebuilt.
type Stateful interface {
	SnapshotState() (StateBlob, error)
	RestoreState(blob StateBlob) error
}

// Nameable is implemented by things that have a stable type name.
type Nameable interface {
	TypeName() string
}

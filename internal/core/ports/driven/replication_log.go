package driven

// ReplicationLog records the messages of one replication action.
type ReplicationLog interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

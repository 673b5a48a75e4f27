package questdb

import "time"

type Config struct {
	// Address is the host:port of the QuestDB HTTP endpoint.
	Address string

	// Table is the table receiving one row per resize event.
	Table string

	// QueueSize is the initial capacity of the queue holding events not yet sent.
	QueueSize int

	AutoFlushRows     int
	AutoFlushInterval time.Duration
	RetryTimeout      time.Duration
}

func NewDefaultConfig() *Config {
	return &Config{
		Address: "localhost:9000",
		Table:   "queue_resizes",

		QueueSize: 64,

		AutoFlushRows:     1_000,
		AutoFlushInterval: time.Second,
		RetryTimeout:      time.Second,
	}
}

package enum

type KVStoreType string
type SinkType string

const (
	KVStoreTypeBadger KVStoreType = "badger"
)

const (
	SinkConsole SinkType = "console"
	SinkCSV     SinkType = "csv"
	SinkXLSX    SinkType = "xlsx"
	SinkKVStore SinkType = "kvstore"
	SinkNATS    SinkType = "nats"
)

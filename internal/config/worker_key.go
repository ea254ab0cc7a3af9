package config

type WorkerKeyStruct struct {
	PersistAnswersQueue string
	PersistFlagsQueue   string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue: "persist_answers_queue",
	PersistFlagsQueue:   "persist_flags_queue",
}

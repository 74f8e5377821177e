package config

type WorkerKeyStruct struct {
	PersistStudyQueue string
	PersistMockQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistStudyQueue: "persist_study_queue",
	PersistMockQueue:  "persist_mock_queue",
}

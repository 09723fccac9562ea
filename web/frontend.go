package web

// Payloads served to map frontends.

type StatusData struct {
	Running       bool       `json:"running"`
	WorkerThreads int        `json:"workerThreads"`
	Tasks         []TaskData `json:"tasks"`
}

type TaskData struct {
	Ref         string `json:"ref"`
	Description string `json:"description"`
}

type WorldData struct {
	Name    string `json:"name"`
	UUID    string `json:"uuid"`
	Version string `json:"version"`
}

type MapData struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	World   string `json:"world"`
	Regions int    `json:"regions"`
}

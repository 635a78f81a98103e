package remote

// Node is a file or folder in the cloud drive.
type Node struct {
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	MTime       int64  `json:"mtime"` // unix ms
	Fingerprint string `json:"fingerprint,omitempty"`
	Folder      bool   `json:"folder"`
}

// Folder is a remote folder reference.
type Folder struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

// APIError is the error body returned by the API.
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type uploadFolderResponse struct {
	Folder *Folder `json:"folder"`
}

type childrenResponse struct {
	Nodes []Node `json:"nodes"`
}

// HeartbeatRequest reports a folder group's backup state.
type HeartbeatRequest struct {
	Group     string `json:"group"`
	State     string `json:"state"`
	Timestamp int64  `json:"timestamp"`
}

package models

// FileEntry describes one entry of a directory listing.
type FileEntry struct {
	Name  string `json:"name" msgpack:"name"`
	Path  string `json:"path" msgpack:"path"`
	IsDir bool   `json:"is_dir" msgpack:"is_dir"`
	Size  int64  `json:"size" msgpack:"size"`
}

// DirResponse is the payload of the directory listing endpoints.
type DirResponse struct {
	CurrentPath string      `json:"current_path" msgpack:"current_path"`
	Entries     []FileEntry `json:"entries" msgpack:"entries"`
}

// StopRequest is the body of the server stop endpoint.
type StopRequest struct {
	Confirm bool `json:"confirm"`
}

// InitResponse is the payload returned by the ZIP init endpoint.
type InitResponse struct {
	Success     bool   `json:"success"`
	OperationID string `json:"operationId"`
}

package domain

// ExecutionRequest carries one run of user source code. Language may be
// empty or ambiguous; Filename, when present, drives inference and wins
// over the explicit identifier.
type ExecutionRequest struct {
	Code     string
	Language string
	Filename string
	Room     RoomID
}

// ExecutionResult is the normalized outcome of any execution, whatever
// happened: success, non-zero exit, compile failure, timeout, launch
// failure or unsupported language. It is transient, owned by the
// request until broadcast, then discarded.
type ExecutionResult struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
	Error    bool   `json:"error"`
	Language string `json:"language"`
}

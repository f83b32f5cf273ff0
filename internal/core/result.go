package core

// Result is the uniform envelope returned by every mutating store operation.
// Failures are recovered into it at the operation boundary; nothing is
// designed to crash the process.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	LiveID  string `json:"liveId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

func OK() Result {
	return Result{Success: true}
}

func Fail(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

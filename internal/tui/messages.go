package tui

// bankLoadedMsg is sent when the question source finished loading.
type bankLoadedMsg struct {
	Loaded Loaded
	Err    error
}

// attemptRecordedMsg is sent when a completed session was written to history.
type attemptRecordedMsg struct {
	ID  string
	Err error
}

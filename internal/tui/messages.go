package tui

type SetupSubmitMsg struct {
	APIKey     string
	ServiceURL string
}

type SetupErrorMsg struct {
	Error string
}

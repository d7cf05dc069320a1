package domain

import "fmt"

const (
	PlaceholderText  = "thinking…"
	EmptyPromptText  = "The message looks empty. Please send a question or a message."
	NoResponseText   = "could not obtain a response from the local model."
	EmptyContentText = "the local model's response content was empty."
)

func FailureText(err error) string {
	return fmt.Sprintf("❌ Could not get a reply from the local model: %s", err)
}

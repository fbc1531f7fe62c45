package notification

import (
	"log"
)

const maxDisplayChars = 150

// Show displays a transient notification with the translation outcome.
// Long text is truncated so the banner stays readable.
func Show(text string) {
	displayText := text
	if len(text) > maxDisplayChars {
		displayText = text[:maxDisplayChars] + "..."
	}
	notify(displayText)
}

// ShowBlockingError surfaces a startup-fatal problem to the user.
func ShowBlockingError(title, message string) {
	log.Printf("%s: %s", title, message)
}

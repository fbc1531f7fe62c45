//go:build !darwin

package notification

import "log"

func notify(text string) {
	log.Printf("Translation result: %s", text)
}

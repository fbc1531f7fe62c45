//go:build darwin

package notification

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
)

func notify(text string) {
	go func() {
		script := fmt.Sprintf("display notification %q with title %q", sanitize(text), "SnapTranslate")
		if err := exec.Command("osascript", "-e", script).Run(); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}

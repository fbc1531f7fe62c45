package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Listen registers a global hotkey and invokes callback when the full
// combination is pressed. The callback should only post an event into the
// event loop; the capture-translate workflow runs there.
func Listen(hotkeyConfig string, callback func()) {
	keys := parseHotkey(hotkeyConfig)
	log.Printf("Parsed hotkey configuration: %v", keys)

	type keyState struct {
		name     string
		rawcodes []uint16
		pressed  bool
	}

	var keyStates []keyState
	for _, keyName := range keys {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			log.Printf("ERROR: Cannot map key '%s' to rawcodes, hotkey may not work correctly", keyName)
			continue
		}
		keyStates = append(keyStates, keyState{
			name:     keyName,
			rawcodes: rawcodes,
			pressed:  false,
		})
	}

	if len(keyStates) == 0 {
		log.Printf("ERROR: No valid keys in hotkey configuration '%s'", hotkeyConfig)
		return
	}

	log.Printf("Hotkey listener configured for: %s", hotkeyConfig)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		var mu sync.Mutex

		evChan, _ := Subscribe()

		matches := func(rawcode uint16, ks *keyState) bool {
			for _, rc := range ks.rawcodes {
				if rawcode == rc {
					return true
				}
			}
			return false
		}

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				for i := range keyStates {
					if matches(ev.Rawcode, &keyStates[i]) {
						keyStates[i].pressed = true
					}
				}

				allPressed := true
				for i := range keyStates {
					if !keyStates[i].pressed {
						allPressed = false
						break
					}
				}

				if allPressed {
					log.Printf("Hotkey activated: %s", hotkeyConfig)
					for i := range keyStates {
						keyStates[i].pressed = false
					}
					mu.Unlock()
					if callback != nil {
						callback()
					}
				} else {
					mu.Unlock()
				}
			case gohook.KeyUp:
				mu.Lock()
				for i := range keyStates {
					if matches(ev.Rawcode, &keyStates[i]) {
						keyStates[i].pressed = false
					}
				}
				mu.Unlock()
			}
		}
		log.Printf("Event channel closed")
	}()
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+S" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "ctrl", "alt", "shift":
			keys = append(keys, part)
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}

// Rawcode tables carry the Windows virtual-key code first, then the macOS
// virtual keycode where it differs, so one table serves both hooks.
var modifierRawcodes = map[string][]uint16{
	"ctrl":  {162, 163, 59, 62}, // VK_LCONTROL, VK_RCONTROL, kVK_Control, kVK_RightControl
	"alt":   {164, 165, 58, 61}, // VK_LMENU, VK_RMENU, kVK_Option, kVK_RightOption
	"shift": {160, 161, 56, 60}, // VK_LSHIFT, VK_RSHIFT, kVK_Shift, kVK_RightShift
	"cmd":   {91, 92, 55, 54},   // VK_LWIN, VK_RWIN, kVK_Command, kVK_RightCommand
}

var letterRawcodes = map[string]uint16{
	"a": 0, "b": 11, "c": 8, "d": 2, "e": 14, "f": 3, "g": 5, "h": 4,
	"i": 34, "j": 38, "k": 40, "l": 37, "m": 46, "n": 45, "o": 31,
	"p": 35, "q": 12, "r": 15, "s": 1, "t": 17, "u": 32, "v": 9,
	"w": 13, "x": 7, "y": 16, "z": 6,
}

var digitRawcodes = map[string]uint16{
	"0": 29, "1": 18, "2": 19, "3": 20, "4": 21,
	"5": 23, "6": 22, "7": 26, "8": 28, "9": 25,
}

var fnRawcodes = map[string]uint16{
	"f1": 122, "f2": 120, "f3": 99, "f4": 118, "f5": 96, "f6": 97,
	"f7": 98, "f8": 100, "f9": 101, "f10": 109, "f11": 103, "f12": 111,
}

var specialRawcodes = map[string][]uint16{
	"space":     {32, 49},
	"enter":     {13, 36},
	"return":    {13, 36},
	"esc":       {27, 53},
	"escape":    {27, 53},
	"tab":       {9, 48},
	"backspace": {8, 51},
	"delete":    {46, 117},
	"del":       {46, 117},
	"home":      {36, 115},
	"end":       {35, 119},
	"left":      {37, 123},
	"up":        {38, 126},
	"right":     {39, 124},
	"down":      {40, 125},
}

// keyNameToRawcodes maps a key name to the rawcodes a key hook may report
// for it on either platform. Returns nil for unknown keys.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	if codes, ok := modifierRawcodes[keyName]; ok {
		return codes
	}
	if codes, ok := specialRawcodes[keyName]; ok {
		return codes
	}

	// Letters: VK code is 'A'+index; the macOS keycode comes from the table.
	if mac, ok := letterRawcodes[keyName]; ok {
		vk := uint16('A' + keyName[0] - 'a')
		return []uint16{vk, mac}
	}

	// Digits: VK code is '0'+digit.
	if mac, ok := digitRawcodes[keyName]; ok {
		vk := uint16('0' + keyName[0] - '0')
		return []uint16{vk, mac}
	}

	// Function keys F1-F24: VK codes run from 112. macOS codes exist for
	// F1-F12 only.
	if strings.HasPrefix(keyName, "f") && len(keyName) > 1 {
		n := 0
		for _, r := range keyName[1:] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			codes := []uint16{uint16(111 + n)}
			if mac, ok := fnRawcodes[keyName]; ok {
				codes = append(codes, mac)
			}
			return codes
		}
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}

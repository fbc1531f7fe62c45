package hotkey

import (
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// gohook can only run one event tap per process, so every consumer
// (hotkey combos, the region selector, idle-escape routing) shares it
// through Subscribe. The tap starts lazily on the first subscriber and
// lives for the rest of the process; gohook.End is never called.
var tap struct {
	once sync.Once
	mu   sync.Mutex
	next int
	subs map[int]chan gohook.Event
}

// Subscribe returns a private stream of global input events and a cancel
// function. Slow subscribers drop events instead of stalling the tap.
func Subscribe() (<-chan gohook.Event, func()) {
	tap.once.Do(startTap)

	ch := make(chan gohook.Event, 64)
	tap.mu.Lock()
	if tap.subs == nil {
		tap.subs = make(map[int]chan gohook.Event)
	}
	id := tap.next
	tap.next++
	tap.subs[id] = ch
	tap.mu.Unlock()

	cancel := func() {
		tap.mu.Lock()
		if _, ok := tap.subs[id]; ok {
			delete(tap.subs, id)
			close(ch)
		}
		tap.mu.Unlock()
	}
	return ch, cancel
}

func startTap() {
	evChan := gohook.Start()
	if evChan == nil {
		log.Printf("ERROR: gohook.Start() returned nil channel")
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in input tap goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			tap.mu.Lock()
			for _, sub := range tap.subs {
				select {
				case sub <- ev:
				default:
				}
			}
			tap.mu.Unlock()
		}
		log.Printf("input tap channel closed")
	}()
}

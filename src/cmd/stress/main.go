package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"snaptranslate/src/singleinstance"
)

type stressOptions struct {
	n        int
	text     string
	from     string
	to       string
	deadline time.Duration
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	opts := &stressOptions{}
	app := &cli.App{
		Name:  "stress",
		Usage: "Stress test translate delegation against a resident instance",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Value: 50, Usage: "number of clients to launch", Destination: &opts.n},
			&cli.StringFlag{Name: "text", Value: "hello world", Usage: "text each client sends", Destination: &opts.text},
			&cli.StringFlag{Name: "from", Value: "en", Usage: "source language", Destination: &opts.from},
			&cli.StringFlag{Name: "to", Value: "vi", Usage: "target language", Destination: &opts.to},
			&cli.DurationFlag{Name: "deadline", Value: 5 * time.Second, Usage: "per-client timeout", Destination: &opts.deadline},
		},
		Action: func(_ *cli.Context) error {
			return runWithOptions(*opts)
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func runWithOptions(opts stressOptions) error {
	var wg sync.WaitGroup
	var okCount int32
	var busyCount int32
	var errCount int32

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			client := singleinstance.NewClient()
			delegated, _, err := client.TryTranslate(ctx, opts.text, opts.from, opts.to)
			if err != nil {
				if strings.Contains(strings.ToLower(err.Error()), "busy") {
					atomic.AddInt32(&busyCount, 1)
					return
				}
				atomic.AddInt32(&errCount, 1)
				return
			}
			if delegated {
				atomic.AddInt32(&okCount, 1)
				return
			}
			atomic.AddInt32(&errCount, 1)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "launched=%d ok=%d busy=%d err=%d elapsed=%s\n", opts.n, okCount, busyCount, errCount, elapsed)
	return nil
}

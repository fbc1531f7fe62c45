package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"snaptranslate/src/capture"
	"snaptranslate/src/clipboard"
	"snaptranslate/src/config"
	"snaptranslate/src/ocr"
	"snaptranslate/src/singleinstance"
	"snaptranslate/src/translate"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "snaptranslate",
		Usage: "Capture screen regions or translate text from the command line",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output to stderr"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
			return nil
		},
		Commands: []*cli.Command{
			translateCmd(),
			captureCmd(),
			providersCmd(),
		},
	}
	return app
}

func translateCmd() *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Translate text (argument or stdin). Uses the resident app when running, otherwise translates directly",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Value: "en", Usage: "Source language code"},
			&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Value: "vi", Usage: "Target language code"},
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Usage: "Preferred provider to try first"},
			&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second, Usage: "Overall operation timeout"},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}
			if text == "" {
				return fmt.Errorf("nothing to translate: pass text as an argument or pipe it via stdin")
			}

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			from, to := c.String("from"), c.String("to")

			// A resident instance owns the hotkeys and the panel; delegate
			// so its history and preferences stay coherent.
			client := singleinstance.NewClient()
			delegated, result, err := client.TryTranslate(ctx, text, from, to)
			if err != nil {
				return err
			}
			if delegated {
				fmt.Print(result)
				return nil
			}

			log.Printf("no resident instance found, translating directly")
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			translator := translate.NewRetrier(
				translate.NewOrchestrator(translate.DefaultProviders(cfg.DeepLAPIKey)...))
			res := translator.Translate(ctx, text, from, to, c.String("provider"))
			if !res.OK() {
				return res.Err
			}
			fmt.Print(res.Text)
			return nil
		},
	}
}

func captureCmd() *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Run a capture-translate session: interactive via the resident app, or headless with --region",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stdout", Usage: "Print the translation instead of copying it to the clipboard"},
			&cli.StringFlag{Name: "region", Usage: "Capture a fixed region \"x,y,w,h\" in screen points without the resident app"},
			&cli.StringFlag{Name: "lang-priority", Usage: "Comma-separated OCR language packs to try first (e.g. chi_sim,chi_tra)"},
			&cli.StringFlag{Name: "from", Value: "en", Usage: "Source language code"},
			&cli.StringFlag{Name: "to", Value: "vi", Usage: "Target language code"},
			&cli.DurationFlag{Name: "timeout", Value: 120 * time.Second, Usage: "Overall operation timeout"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()

			if spec := c.String("region"); spec != "" {
				return captureFixedRegion(ctx, c, spec)
			}

			client := singleinstance.NewClient()
			delegated, text, err := client.TryCapture(ctx, c.Bool("stdout"))
			if err != nil {
				return err
			}
			if !delegated {
				return fmt.Errorf("no resident instance found: start the snaptranslate app first or pass --region")
			}
			if c.Bool("stdout") {
				fmt.Print(text)
			}
			return nil
		},
	}
}

// captureFixedRegion grabs a caller-supplied region and runs recognition
// and translation in-process, skipping the interactive selector.
func captureFixedRegion(ctx context.Context, c *cli.Context, spec string) error {
	region, err := parseRegion(spec)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	img, err := capture.New(0).Capture(region)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	priority := cfg.LanguagePriority
	if v := c.String("lang-priority"); v != "" {
		priority = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				priority = append(priority, p)
			}
		}
	}

	blocks, err := ocr.New().Recognize(ctx, img, priority)
	if err != nil {
		return fmt.Errorf("ocr: %w", err)
	}
	text := ocr.Join(blocks)

	translator := translate.NewRetrier(
		translate.NewOrchestrator(translate.DefaultProviders(cfg.DeepLAPIKey)...))
	res := translator.Translate(ctx, text, c.String("from"), c.String("to"), cfg.PreferredProvider)
	if !res.OK() {
		return res.Err
	}

	if c.Bool("stdout") {
		fmt.Print(res.Text)
		return nil
	}
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return clipboard.Write(res.Text)
}

// parseRegion reads an "x,y,w,h" point-space region.
func parseRegion(spec string) (capture.Region, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return capture.Region{}, fmt.Errorf("invalid region %q: want \"x,y,w,h\"", spec)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return capture.Region{}, fmt.Errorf("invalid region %q: %w", spec, err)
		}
		vals[i] = n
	}
	r := capture.Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if !r.Valid() {
		return capture.Region{}, fmt.Errorf("invalid region %q: width and height must be positive", spec)
	}
	return r, nil
}

func providersCmd() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List translation providers in fallback order",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			o := translate.NewOrchestrator(translate.DefaultProviders(cfg.DeepLAPIKey)...)
			for _, name := range o.ProviderNames() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

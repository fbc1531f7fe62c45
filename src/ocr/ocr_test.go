package ocr

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"snaptranslate/src/capture"
)

func testImage(w, h int) *capture.Image {
	return &capture.Image{
		Bitmap:      image.NewNRGBA(image.Rect(0, 0, w, h)),
		PixelWidth:  w,
		PixelHeight: h,
	}
}

func TestLanguagesPriorityReorders(t *testing.T) {
	got := Languages([]string{"chi_sim", "chi_tra"})
	want := []string{"chi_sim", "chi_tra", "eng", "vie"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Languages = %v, want %v", got, want)
		}
	}
}

func TestLanguagesNeverNarrows(t *testing.T) {
	for _, priority := range [][]string{nil, {"eng"}, {"chi_sim"}, {"bogus"}, ChinesePriority} {
		got := Languages(priority)
		if len(got) != len(recognitionLanguages) {
			t.Errorf("priority %v narrowed language set to %v", priority, got)
		}
	}
}

func TestJoin(t *testing.T) {
	blocks := []Block{{Text: "hello", Confidence: 0.9}, {Text: "world", Confidence: 0.4}}
	if got := Join(blocks); got != "hello\nworld" {
		t.Errorf("Join = %q", got)
	}
	if got := Join(nil); got != "" {
		t.Errorf("Join(nil) = %q, want empty", got)
	}
}

func TestRecognizeEmptyResultIsNotError(t *testing.T) {
	r := &Recognizer{engine: func(png []byte, languages []string) ([]Block, error) {
		return nil, nil
	}}
	blocks, err := r.Recognize(context.Background(), testImage(400, 400), nil)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("expected empty result, got %v", blocks)
	}
}

func TestRecognizeCancelledBeforeStart(t *testing.T) {
	called := false
	r := &Recognizer{engine: func(png []byte, languages []string) ([]Block, error) {
		called = true
		return nil, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Recognize(ctx, testImage(400, 400), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("engine must not run after cancellation")
	}
}

func TestRecognizeCancelledInFlight(t *testing.T) {
	release := make(chan struct{})
	r := &Recognizer{engine: func(png []byte, languages []string) ([]Block, error) {
		<-release
		return []Block{{Text: "late"}}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := r.Recognize(ctx, testImage(400, 400), nil)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recognize blocked on a cancelled context")
	}
	close(release)
}

func TestRecognizeEngineLive(t *testing.T) {
	// Exercises the real engine when tesseract is present; tolerate its
	// absence the way headless capture tests do.
	r := New()
	blocks, err := r.Recognize(context.Background(), testImage(400, 400), nil)
	if err != nil {
		t.Logf("engine unavailable (expected without tesseract): %v", err)
		return
	}
	// A blank image should produce no text.
	if len(blocks) != 0 {
		t.Logf("engine found %d blocks on blank image", len(blocks))
	}
}

package singleinstance

import (
	"context"
	"testing"
	"time"
)

func TestCaptureRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}
	defer srv.Close()

	client := NewClient()
	delegatedCh := make(chan struct{})
	go func() {
		defer close(delegatedCh)
		delegated, text, err := client.TryCapture(ctx, true)
		if err != nil {
			t.Errorf("client: %v", err)
		}
		if !delegated {
			t.Errorf("expected delegation")
		}
		if text != "xin chào" {
			t.Errorf("expected translated text, got %q", text)
		}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	req := conn.Request()
	if req.Kind != KindCapture {
		t.Errorf("expected capture request, got kind=%d", req.Kind)
	}
	if !req.OutputToStdout {
		t.Errorf("expected stdout request")
	}
	if err := conn.RespondSuccess("xin chào"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()
	<-delegatedCh
}

func TestTranslateRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}
	defer srv.Close()

	client := NewClient()
	delegatedCh := make(chan struct{})
	go func() {
		defer close(delegatedCh)
		delegated, result, err := client.TryTranslate(ctx, "hello\nworld", "en", "vi")
		if err != nil {
			t.Errorf("client: %v", err)
		}
		if !delegated {
			t.Errorf("expected delegation")
		}
		if result != "dịch xong" {
			t.Errorf("unexpected result %q", result)
		}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	req := conn.Request()
	if req.Kind != KindTranslate {
		t.Fatalf("expected translate request, got kind=%d", req.Kind)
	}
	if req.SourceLang != "en" || req.TargetLang != "vi" {
		t.Errorf("unexpected language pair %s/%s", req.SourceLang, req.TargetLang)
	}
	if req.Text != "hello\nworld" {
		t.Errorf("unexpected body %q", req.Text)
	}
	if err := conn.RespondSuccess("dịch xong"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()
	<-delegatedCh
}

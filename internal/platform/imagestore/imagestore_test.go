package imagestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMemoryStore_SaveAndOpen(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	name, err := s.Save(ctx, "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Errorf("expected .png reference, got %s", name)
	}

	rc, err := s.Open(ctx, name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "png-bytes" {
		t.Errorf("unexpected content: %s", data)
	}
}

func TestMemoryStore_RejectsContentType(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Save(context.Background(), "application/pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestMemoryStore_RejectsOversized(t *testing.T) {
	s := NewMemoryStore()
	big := bytes.NewReader(make([]byte, MaxImageSize+1))
	_, err := s.Save(context.Background(), "image/jpeg", big)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestMemoryStore_OpenMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Open(context.Background(), "nope.png"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	name, err := s.Save(ctx, "image/jpeg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("expected .jpg reference, got %s", name)
	}

	rc, err := s.Open(ctx, name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected content: %s", data)
	}

	if err := s.Remove(ctx, name); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Open(ctx, name); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound after removal, got %v", err)
	}
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Open(context.Background(), "../../etc/passwd"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound for traversal, got %v", err)
	}
	if err := s.Remove(context.Background(), "../x"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

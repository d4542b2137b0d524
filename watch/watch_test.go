package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherNotifiesOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.anm2")
	if err := os.WriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatal(err)
	}

	notified := make(chan struct{}, 1)
	w, err := New(path, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("changed externally"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification for an external write")
	}
}

func TestWatcherSuppressesOwnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.anm2")
	if err := os.WriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatal(err)
	}

	notified := make(chan struct{}, 1)
	w, err := New(path, func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.SuppressNext()
	if err := os.WriteFile(path, []byte("our own save"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-notified:
		t.Fatal("a suppressed self-write should not notify")
	case <-time.After(300 * time.Millisecond):
	}
}

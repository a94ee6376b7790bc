package uploader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/camden-git/photomscompanion/api"
)

type fakeRemote struct {
	mu       sync.Mutex
	uploaded []string
}

func (f *fakeRemote) UploadPhoto(_ context.Context, filename string, data io.Reader) (*api.UploadResult, error) {
	io.Copy(io.Discard, data)
	f.mu.Lock()
	f.uploaded = append(f.uploaded, filename)
	f.mu.Unlock()
	return &api.UploadResult{ID: "remote-" + filename}, nil
}

func (f *fakeRemote) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.uploaded))
	copy(out, f.uploaded)
	return out
}

type countingCollection struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCollection) Invalidate() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingCollection) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(eventType string, _ map[string]interface{}) {
	n.mu.Lock()
	n.events = append(n.events, eventType)
	n.mu.Unlock()
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	copy(out, n.events)
	return out
}

func writeTempImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really pixels"), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func waitUploads(t *testing.T, remote *fakeRemote, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(remote.names()) >= want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d uploads, got %v", want, remote.names())
}

func TestIsRasterImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"scan.tiff", true},
		{"anim.webp", true},
		{"clip.mp4", false},
		{"notes.txt", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := IsRasterImage(tt.name); got != tt.want {
			t.Errorf("IsRasterImage(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestQueueFileRejectsNonImages(t *testing.T) {
	remote := &fakeRemote{}
	up := New(remote, nil, nil, 4, 1)
	defer up.Stop()

	if up.QueueFile("/tmp/video.mp4") {
		t.Error("non-raster file was accepted")
	}
}

func TestQueueFileUploadsAndInvalidates(t *testing.T) {
	dir := t.TempDir()
	path := writeTempImage(t, dir, "holiday.jpg")

	remote := &fakeRemote{}
	coll := &countingCollection{}
	notif := &recordingNotifier{}
	up := New(remote, coll, notif, 4, 1)
	defer up.Stop()

	if !up.QueueFile(path) {
		t.Fatal("QueueFile rejected a valid image")
	}
	waitUploads(t, remote, 1)

	if names := remote.names(); names[0] != "holiday.jpg" {
		t.Errorf("uploaded as %q, want the base filename", names[0])
	}

	deadline := time.Now().Add(2 * time.Second)
	for coll.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if coll.count() != 1 {
		t.Errorf("Invalidate calls = %d, want 1", coll.count())
	}

	events := notif.types()
	if len(events) == 0 || events[len(events)-1] != "upload.finished" {
		t.Errorf("events = %v, want upload.finished", events)
	}
}

func TestQueueFileMissingFileFails(t *testing.T) {
	remote := &fakeRemote{}
	notif := &recordingNotifier{}
	up := New(remote, nil, notif, 4, 1)
	defer up.Stop()

	if !up.QueueFile(filepath.Join(t.TempDir(), "ghost.jpg")) {
		t.Fatal("queueing is accepted before the file is checked")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(notif.types()) == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	events := notif.types()
	if len(events) != 1 || events[0] != "upload.failed" {
		t.Errorf("events = %v, want [upload.failed]", events)
	}
	if len(remote.names()) != 0 {
		t.Errorf("missing file reached the server: %v", remote.names())
	}
}

func TestQueueDirNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	// written out of order; natural sort puts img2 before img10
	for _, name := range []string{"img10.jpg", "img2.jpg", "img1.jpg", "skip.txt"} {
		writeTempImage(t, dir, name)
	}

	remote := &fakeRemote{}
	up := New(remote, nil, nil, 8, 1)
	defer up.Stop()

	queued, err := up.QueueDir(dir)
	if err != nil {
		t.Fatalf("QueueDir: %v", err)
	}
	if queued != 3 {
		t.Fatalf("queued = %d, want 3", queued)
	}
	waitUploads(t, remote, 3)

	want := []string{"img1.jpg", "img2.jpg", "img10.jpg"}
	got := remote.names()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("upload order = %v, want %v", got, want)
		}
	}
}

package uploader

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/facette/natsort"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/realtime"
)

// Remote is the upload slice of the server API.
type Remote interface {
	UploadPhoto(ctx context.Context, filename string, data io.Reader) (*api.UploadResult, error)
}

// Collection is invalidated after every confirmed upload so the next gallery
// read refetches.
type Collection interface {
	Invalidate()
}

// Notifier broadcasts upload progress events. May be nil.
type Notifier interface {
	Notify(eventType string, extra map[string]interface{})
}

// Job is one local file queued for upload.
type Job struct {
	Path string
}

// Uploader pushes local files to the server through a small worker pool.
// Duplicate queueing of the same path is suppressed while a job is pending.
type Uploader struct {
	JobQueue   chan Job
	remote     Remote
	collection Collection
	notifier   Notifier
	wg         sync.WaitGroup
	stopChan   chan struct{}
	pending    map[string]bool
	mu         sync.Mutex
}

// New starts an uploader with the given queue size and worker count.
func New(remote Remote, collection Collection, notifier Notifier, queueSize, numWorkers int) *Uploader {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	up := &Uploader{
		JobQueue:   make(chan Job, queueSize),
		remote:     remote,
		collection: collection,
		notifier:   notifier,
		stopChan:   make(chan struct{}),
		pending:    make(map[string]bool),
	}
	up.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go up.worker(i)
	}
	log.Printf("uploader: started %d worker(s) with queue size %d", numWorkers, queueSize)
	return up
}

func (up *Uploader) worker(id int) {
	defer up.wg.Done()

	for {
		select {
		case job, ok := <-up.JobQueue:
			if !ok {
				log.Printf("uploader: worker %d stopping: queue closed", id)
				return
			}
			up.process(id, job)
			up.mu.Lock()
			delete(up.pending, job.Path)
			up.mu.Unlock()
		case <-up.stopChan:
			log.Printf("uploader: worker %d stopping: stop signal received", id)
			return
		}
	}
}

// process uploads one file. Failures surface as an upload.failed event with
// the server-supplied message; the queue keeps running.
func (up *Uploader) process(id int, job Job) {
	if _, err := os.Stat(job.Path); err != nil {
		log.Printf("uploader: worker %d skipping %s: %v", id, job.Path, err)
		up.notify(realtime.EventUploadFailed, map[string]interface{}{"path": job.Path, "error": "file not found"})
		return
	}

	// pre-upload EXIF peek, for immediate feedback; the server's extraction
	// stays authoritative
	peek := PeekExif(job.Path)
	if peek.CameraMake != "" || peek.CameraModel != "" {
		log.Printf("uploader: %s shot on %s %s", filepath.Base(job.Path), peek.CameraMake, peek.CameraModel)
	}

	file, err := os.Open(job.Path)
	if err != nil {
		log.Printf("uploader: worker %d failed to open %s: %v", id, job.Path, err)
		up.notify(realtime.EventUploadFailed, map[string]interface{}{"path": job.Path, "error": "cannot open file"})
		return
	}
	defer file.Close()

	result, err := up.remote.UploadPhoto(context.Background(), filepath.Base(job.Path), file)
	if err != nil {
		log.Printf("uploader: worker %d upload failed for %s: %v", id, job.Path, err)
		up.notify(realtime.EventUploadFailed, map[string]interface{}{"path": job.Path, "error": api.UserMessage(err)})
		return
	}

	log.Printf("uploader: worker %d uploaded %s as %s", id, job.Path, result.ID)
	if up.collection != nil {
		up.collection.Invalidate()
	}
	extra := map[string]interface{}{"path": job.Path, "photoID": result.ID}
	if peek.TakenAt != "" {
		extra["takenAt"] = peek.TakenAt
	}
	up.notify(realtime.EventUploadFinished, extra)
}

// QueueFile queues a single file if it is a raster image and not already
// pending. Returns whether the job was accepted.
func (up *Uploader) QueueFile(path string) bool {
	if !IsRasterImage(path) {
		log.Printf("uploader: refusing non-raster file %s", path)
		return false
	}

	up.mu.Lock()
	if up.pending[path] {
		up.mu.Unlock()
		return false
	}
	up.pending[path] = true
	up.mu.Unlock()

	select {
	case up.JobQueue <- Job{Path: path}:
		log.Printf("uploader: queued %s", path)
		return true
	default:
		log.Printf("uploader: WARNING queue full, dropping %s", path)
		up.mu.Lock()
		delete(up.pending, path)
		up.mu.Unlock()
		return false
	}
}

// QueueDir queues every raster image directly inside dir, in natural
// filename order. Returns how many jobs were accepted.
func (up *Uploader) QueueDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("uploader: reading %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsRasterImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	natsort.Sort(names)

	queued := 0
	for _, name := range names {
		if up.QueueFile(filepath.Join(dir, name)) {
			queued++
		}
	}
	return queued, nil
}

// Stop shuts the worker pool down and waits for in-flight uploads.
func (up *Uploader) Stop() {
	log.Println("uploader: stopping workers...")
	close(up.stopChan)
	up.wg.Wait()
	log.Println("uploader: all workers stopped")
}

func (up *Uploader) notify(eventType string, extra map[string]interface{}) {
	if up.notifier != nil {
		up.notifier.Notify(eventType, extra)
	}
}

package gallery

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/camden-git/photomscompanion/api"
	"github.com/camden-git/photomscompanion/models"
	"github.com/camden-git/photomscompanion/realtime"
)

// Remote is the slice of the server API the controller depends on. *api.Client
// satisfies it; tests substitute fakes.
type Remote interface {
	ListPhotos(ctx context.Context, q api.ListQuery) (*models.CollectionPage, error)
	GetPhoto(ctx context.Context, id string) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, id string, update models.UpdatePhotoRequest) (*models.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
	GenerateAITags(ctx context.Context, id string) (*models.Photo, error)
	EditPhoto(ctx context.Context, id string, sub models.EditSubmission) (*models.EditResult, error)
}

// Mirror receives successful list results for the offline mirror. May be nil.
type Mirror interface {
	SavePage(page *models.CollectionPage) error
	RemovePhoto(id string) error
}

// Notifier broadcasts state-change events to the UI. May be nil.
type Notifier interface {
	Notify(eventType string, extra map[string]interface{})
}

// State is a consistent snapshot of the gallery for the UI.
type State struct {
	Filter        FilterState            `json:"filter"`
	CommittedText string                 `json:"committedText"`
	Page          *models.CollectionPage `json:"page"`
	Loading       bool                   `json:"loading"`
	Error         string                 `json:"error,omitempty"`
	TotalPages    int                    `json:"totalPages"`
	CanPrev       bool                   `json:"canPrev"`
	CanNext       bool                   `json:"canNext"`
}

// Cache bounds. Evicting an entry never shows stale data; the next read of an
// evicted key simply refetches.
const (
	pageCacheSize   = 64
	detailCacheSize = 256
	cacheTTL        = 5 * time.Minute
)

// Controller owns the collection query state machine: the filter state, the
// debounced search commit, the per-key page cache and the in-flight fetch.
// Only confirmed remote results mutate cached state, and only the completion
// matching the most recently requested key is applied.
type Controller struct {
	remote   Remote
	mirror   Mirror
	notifier Notifier

	mu         sync.Mutex
	filter     FilterState
	debouncer  *Debouncer
	quiet      time.Duration
	timer      *time.Timer
	pages      *expirable.LRU[QueryKey, *models.CollectionPage]
	details    *expirable.LRU[string, *models.Photo]
	displayed  *models.CollectionPage
	current    QueryKey
	generation uint64
	loading    bool
	lastErr    string
	total      int64
	now        func() time.Time
}

// NewController creates an idle controller. Call Start to issue the initial
// fetch.
func NewController(remote Remote, mirror Mirror, notifier Notifier) *Controller {
	return &Controller{
		remote:    remote,
		mirror:    mirror,
		notifier:  notifier,
		filter:    NewFilterState(),
		debouncer: NewDebouncer(DebounceQuiet),
		quiet:     DebounceQuiet,
		pages:     expirable.NewLRU[QueryKey, *models.CollectionPage](pageCacheSize, nil, cacheTTL),
		details:   expirable.NewLRU[string, *models.Photo](detailCacheSize, nil, cacheTTL),
		now:       time.Now,
	}
}

// Start issues the initial collection fetch for the default filter state.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
}

// Stop cancels any pending debounce timer.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// State returns a snapshot for rendering.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.total
	page, ok := c.pages.Get(c.current)
	if !ok {
		// a failed or in-flight fetch keeps the previous page on screen
		page = c.displayed
	} else {
		total = page.Total
	}
	return State{
		Filter:        c.filter,
		CommittedText: c.debouncer.Committed(),
		Page:          page,
		Loading:       c.loading,
		Error:         c.lastErr,
		TotalPages:    TotalPages(total),
		CanPrev:       c.filter.CanPrev(),
		CanNext:       c.filter.CanNext(total),
	}
}

// TypeSearch records a search keystroke. The query key is untouched until the
// input has been stable for the quiet period; every further keystroke
// restarts the timer.
func (c *Controller) TypeSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter.SearchInput = text
	c.debouncer.Observe(text, c.now())

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, c.FlushSearch)
}

// FlushSearch commits the pending search value if its quiet period has
// elapsed. Invoked by the debounce timer; safe to call at any time.
func (c *Controller) FlushSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.debouncer.Committed()
	value, fired := c.debouncer.Expire(c.now())
	if !fired {
		// fired early relative to the deadline; try again when it is due
		if c.debouncer.State() == DebouncePending {
			if c.timer != nil {
				c.timer.Stop()
			}
			c.timer = time.AfterFunc(c.debouncer.Deadline().Sub(c.now()), c.FlushSearch)
		}
		return
	}

	if value != prev {
		c.filter.Page = 1
	}
	c.refreshLocked()
}

// SetTag updates the exact-tag filter and refreshes.
func (c *Controller) SetTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.SetTag(tag)
	c.refreshLocked()
}

// SetStartDate updates the lower date bound and refreshes.
func (c *Controller) SetStartDate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.SetStartDate(date)
	c.refreshLocked()
}

// SetEndDate updates the upper date bound and refreshes.
func (c *Controller) SetEndDate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.SetEndDate(date)
	c.refreshLocked()
}

// ShowRecent applies the "recent uploads" shortcut.
func (c *Controller) ShowRecent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.ShowRecent(c.now())
	c.refreshLocked()
}

// ClearFilters drops tag and date bounds, leaving the search text alone.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.ClearFilters()
	c.refreshLocked()
}

// ResetAll clears every filter including the committed search value.
func (c *Controller) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.ResetAll()
	c.debouncer.Reset()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.refreshLocked()
}

// NextPage advances one page; out of bounds is a silent no-op.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.total
	if page, ok := c.pages.Get(c.current); ok {
		total = page.Total
	}
	before := c.filter.Page
	c.filter.Next(total)
	if c.filter.Page != before {
		c.refreshLocked()
	}
}

// PrevPage goes one page back; out of bounds is a silent no-op.
func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.filter.Page
	c.filter.Prev()
	if c.filter.Page != before {
		c.refreshLocked()
	}
}

// Invalidate drops every cached page and refetches the current view. Cached
// detail entities are untouched; use InvalidatePhoto for those.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

// InvalidatePhoto drops the cached detail entity for one id.
func (c *Controller) InvalidatePhoto(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details.Remove(id)
}

// refreshLocked recomputes the current key and serves it from cache or
// dispatches a fetch. Callers must hold c.mu.
func (c *Controller) refreshLocked() {
	key := c.filter.Key(c.debouncer.Committed())
	c.current = key

	if page, ok := c.pages.Get(key); ok {
		c.loading = false
		c.total = page.Total
		c.displayed = page
		return
	}

	c.generation++
	gen := c.generation
	c.loading = true
	c.lastErr = ""
	go c.fetch(gen, key)
}

// fetch performs one list request and applies the result only if it is still
// the most recently requested key (last-requested-key-wins).
func (c *Controller) fetch(gen uint64, key QueryKey) {
	page, err := c.remote.ListPhotos(context.Background(), key.ListQuery())

	c.mu.Lock()
	if gen != c.generation || key != c.current {
		c.mu.Unlock()
		log.Printf("gallery: discarding stale fetch result for page %d", key.Page)
		return
	}

	if err != nil {
		// keep the previously rendered page; only surface the error
		msg := api.UserMessage(err)
		c.loading = false
		c.lastErr = msg
		c.mu.Unlock()
		log.Printf("gallery: list fetch failed: %v", err)
		c.notify(realtime.EventCollectionError, map[string]interface{}{"error": msg})
		return
	}

	c.pages.Add(key, page)
	c.total = page.Total
	c.displayed = page
	c.loading = false
	c.mu.Unlock()

	if c.mirror != nil {
		if mirrorErr := c.mirror.SavePage(page); mirrorErr != nil {
			log.Printf("gallery: mirror write failed: %v", mirrorErr)
		}
	}
	c.notify(realtime.EventCollectionUpdated, map[string]interface{}{"page": key.Page, "total": page.Total})
}

// invalidateLocked drops the page cache and refetches the active key.
func (c *Controller) invalidateLocked() {
	c.pages.Purge()
	c.refreshLocked()
}

// Photo returns the detail entity for id, from cache or the server. A missing
// photo surfaces as api.ErrNotFound, which callers render as a terminal
// not-found state rather than a transient error.
func (c *Controller) Photo(ctx context.Context, id string) (*models.Photo, error) {
	c.mu.Lock()
	if photo, ok := c.details.Get(id); ok {
		c.mu.Unlock()
		return photo, nil
	}
	c.mu.Unlock()

	photo, err := c.remote.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.details.Add(id, photo)
	c.mu.Unlock()
	return photo, nil
}

// UpdatePhoto applies a metadata update. On success the detail cache holds
// the confirmed entity and the page cache is invalidated; on failure cached
// state is untouched so the previous fields stay displayed.
func (c *Controller) UpdatePhoto(ctx context.Context, id string, update models.UpdatePhotoRequest) (*models.Photo, error) {
	photo, err := c.remote.UpdatePhoto(ctx, id, update)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.details.Add(id, photo)
	c.invalidateLocked()
	c.mu.Unlock()

	c.notify(realtime.EventPhotoUpdated, map[string]interface{}{"photoID": id})
	return photo, nil
}

// DeletePhoto removes a photo after server confirmation; the collection is
// never updated speculatively.
func (c *Controller) DeletePhoto(ctx context.Context, id string) error {
	if err := c.remote.DeletePhoto(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	c.details.Remove(id)
	c.invalidateLocked()
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.RemovePhoto(id); err != nil {
			log.Printf("gallery: mirror prune failed for %s: %v", id, err)
		}
	}
	c.notify(realtime.EventPhotoDeleted, map[string]interface{}{"photoID": id})
	return nil
}

// GenerateAITags asks the server to append AI tags and refreshes caches with
// the confirmed result.
func (c *Controller) GenerateAITags(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := c.remote.GenerateAITags(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.details.Add(id, photo)
	c.invalidateLocked()
	c.mu.Unlock()

	c.notify(realtime.EventPhotoUpdated, map[string]interface{}{"photoID": id})
	return photo, nil
}

// SubmitEdit sends a finalized edit submission. The server derives a brand
// new photo; on success the caller receives its id to navigate to, and the
// page cache is invalidated so the derived photo appears on the next read.
func (c *Controller) SubmitEdit(ctx context.Context, id string, sub models.EditSubmission) (*models.EditResult, error) {
	result, err := c.remote.EditPhoto(ctx, id, sub)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.invalidateLocked()
	c.mu.Unlock()

	c.notify(realtime.EventEditFinished, map[string]interface{}{"photoID": id, "newPhotoID": result.ID})
	return result, nil
}

// notify is nil-safe event broadcast.
func (c *Controller) notify(eventType string, extra map[string]interface{}) {
	if c.notifier != nil {
		c.notifier.Notify(eventType, extra)
	}
}

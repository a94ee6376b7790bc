package store

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm/clause"

	"github.com/camden-git/photomscompanion/models"
)

// PhotoMirror is one row of the offline photo mirror: the last-known summary
// of a photo, written through on every successful list fetch. It exists so
// the UI can show something while the server is unreachable; it is never
// served as live collection state.
type PhotoMirror struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description string
	ThumbPath   string
	TagNames    string // comma-joined, lowercased, for LIKE matching
	CreatedAt   int64  `gorm:"index"` // Unix seconds, from the server entity
	SyncedAt    int64  `gorm:"not null"`
}

// SavePage upserts every photo of a fetched collection page into the mirror.
func (s *Store) SavePage(page *models.CollectionPage) error {
	if page == nil || len(page.Items) == 0 {
		return nil
	}

	rows := make([]PhotoMirror, len(page.Items))
	now := time.Now().Unix()
	for i, photo := range page.Items {
		names := make([]string, len(photo.Tags))
		for j, tag := range photo.Tags {
			names[j] = strings.ToLower(tag.Name)
		}
		rows[i] = PhotoMirror{
			ID:          photo.ID,
			Title:       photo.Title,
			Description: photo.Description,
			ThumbPath:   photo.ThumbPath,
			TagNames:    strings.Join(names, ","),
			CreatedAt:   parseWireTime(photo.CreatedAt),
			SyncedAt:    now,
		}
	}

	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("store: mirroring page %d: %w", page.Page, err)
	}
	return nil
}

// RemovePhoto prunes a deleted photo from the mirror.
func (s *Store) RemovePhoto(id string) error {
	if err := s.db.Delete(&PhotoMirror{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("store: pruning mirror row %s: %w", id, err)
	}
	return nil
}

// MirrorQuery filters an offline mirror search. Semantics track the server's
// list endpoint: free text matches title/description/tags, tag is an exact
// (case-insensitive) match, dates bound the photo creation time.
type MirrorQuery struct {
	FreeText  string
	Tag       string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Limit     int
	Offset    int
}

// SearchMirror queries the offline mirror. Results are ordered newest first.
func (s *Store) SearchMirror(q MirrorQuery) ([]PhotoMirror, error) {
	builder := sq.Select("id", "title", "description", "thumb_path", "tag_names", "created_at", "synced_at").
		From("photo_mirrors").
		OrderBy("created_at DESC")

	if text := strings.TrimSpace(q.FreeText); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"lower(title)": like},
			sq.Like{"lower(description)": like},
			sq.Like{"tag_names": like},
		})
	}
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		// tag_names is comma-joined; pad both sides so LIKE matches whole names
		builder = builder.Where(
			"(',' || tag_names || ',') LIKE ?",
			"%,"+strings.ToLower(tag)+",%",
		)
	}
	if q.StartDate != "" {
		if start, err := time.ParseInLocation("2006-01-02", q.StartDate, time.Local); err == nil {
			builder = builder.Where(sq.GtOrEq{"created_at": start.Unix()})
		}
	}
	if q.EndDate != "" {
		if end, err := time.ParseInLocation("2006-01-02", q.EndDate, time.Local); err == nil {
			// end of day, matching the server's endDate handling
			builder = builder.Where(sq.LtOrEq{"created_at": end.Add(24*time.Hour - time.Second).Unix()})
		}
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		builder = builder.Offset(uint64(q.Offset))
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: building mirror query: %w", err)
	}

	var rows []PhotoMirror
	if err := s.db.Raw(sqlStr, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: mirror query failed: %w", err)
	}
	return rows, nil
}

// parseWireTime converts the server's RFC3339 timestamps to Unix seconds,
// returning 0 for anything unparsable.
func parseWireTime(value string) int64 {
	if value == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.Unix()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Unix()
	}
	return 0
}

package store

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photomscompanion/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "companion.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := testStore(t)

	if _, _, _, err := s.LoadSession(); err != gorm.ErrRecordNotFound {
		t.Fatalf("LoadSession on empty store: err = %v, want ErrRecordNotFound", err)
	}

	user := &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	expiry := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	if err := s.SaveSession("token-abc", user, expiry); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	token, gotUser, gotExpiry, err := s.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if token != "token-abc" {
		t.Errorf("token = %q", token)
	}
	if gotUser.ID != "u1" || gotUser.Username != "alice" {
		t.Errorf("user = %+v", gotUser)
	}
	if !gotExpiry.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", gotExpiry, expiry)
	}

	// saving again overwrites the single row
	if err := s.SaveSession("token-xyz", user, expiry); err != nil {
		t.Fatalf("SaveSession (overwrite): %v", err)
	}
	token, _, _, err = s.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if token != "token-xyz" {
		t.Errorf("token after overwrite = %q", token)
	}

	if err := s.DeleteSession(); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, _, _, err := s.LoadSession(); err != gorm.ErrRecordNotFound {
		t.Errorf("LoadSession after delete: err = %v, want ErrRecordNotFound", err)
	}
}

func mirrorFixture(t *testing.T) *Store {
	t.Helper()
	s := testStore(t)

	page := &models.CollectionPage{
		Items: []models.Photo{
			{
				ID:          "p1",
				Title:       "Sunset at the pier",
				Description: "golden hour",
				Tags:        []models.Tag{{Name: "Sunset"}, {Name: "Beach"}},
				CreatedAt:   "2024-06-10T18:00:00Z",
			},
			{
				ID:        "p2",
				Title:     "Mountain trail",
				Tags:      []models.Tag{{Name: "hiking"}},
				CreatedAt: "2024-06-01T12:00:00Z",
			},
			{
				ID:        "p3",
				Title:     "Beach house",
				Tags:      []models.Tag{{Name: "beach"}, {Name: "architecture"}},
				CreatedAt: "2024-05-20T12:00:00Z",
			},
		},
		Total: 3,
		Page:  1,
		Limit: 20,
	}
	if err := s.SavePage(page); err != nil {
		t.Fatalf("SavePage: %v", err)
	}
	return s
}

func searchIDs(t *testing.T, s *Store, q MirrorQuery) []string {
	t.Helper()
	rows, err := s.SearchMirror(q)
	if err != nil {
		t.Fatalf("SearchMirror(%+v): %v", q, err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

func TestSearchMirror(t *testing.T) {
	s := mirrorFixture(t)

	tests := []struct {
		name string
		q    MirrorQuery
		want []string
	}{
		{"no filters, newest first", MirrorQuery{}, []string{"p1", "p2", "p3"}},
		{"free text on title", MirrorQuery{FreeText: "sunset"}, []string{"p1"}},
		{"free text on description", MirrorQuery{FreeText: "golden"}, []string{"p1"}},
		{"free text on tags", MirrorQuery{FreeText: "hiking"}, []string{"p2"}},
		{"exact tag, case-insensitive", MirrorQuery{Tag: "Beach"}, []string{"p1", "p3"}},
		{"tag must match whole name", MirrorQuery{Tag: "arch"}, nil},
		{"no match", MirrorQuery{FreeText: "snow"}, nil},
		{"limit and offset", MirrorQuery{Limit: 1, Offset: 1}, []string{"p2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchIDs(t, s, tt.q)
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("ids = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSearchMirrorDateRange(t *testing.T) {
	s := mirrorFixture(t)

	got := searchIDs(t, s, MirrorQuery{StartDate: "2024-06-01"})
	if len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("startDate filter: ids = %v, want [p1 p2]", got)
	}

	// endDate is inclusive through the end of that day
	got = searchIDs(t, s, MirrorQuery{EndDate: "2024-06-01"})
	if len(got) != 2 || got[0] != "p2" || got[1] != "p3" {
		t.Errorf("endDate filter: ids = %v, want [p2 p3]", got)
	}
}

func TestSavePageUpserts(t *testing.T) {
	s := mirrorFixture(t)

	if err := s.SavePage(&models.CollectionPage{
		Items: []models.Photo{{
			ID:        "p1",
			Title:     "Renamed pier",
			CreatedAt: "2024-06-10T18:00:00Z",
		}},
		Total: 1, Page: 1, Limit: 20,
	}); err != nil {
		t.Fatalf("SavePage (upsert): %v", err)
	}

	rows, err := s.SearchMirror(MirrorQuery{FreeText: "renamed"})
	if err != nil {
		t.Fatalf("SearchMirror: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "p1" {
		t.Fatalf("rows = %+v, want the updated p1", rows)
	}
	if all := searchIDs(t, s, MirrorQuery{}); len(all) != 3 {
		t.Errorf("upsert changed row count: %v", all)
	}
}

func TestRemovePhotoPrunesMirror(t *testing.T) {
	s := mirrorFixture(t)

	if err := s.RemovePhoto("p2"); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	if got := searchIDs(t, s, MirrorQuery{}); len(got) != 2 {
		t.Errorf("ids after prune = %v, want 2 rows", got)
	}

	// pruning an unknown id is not an error
	if err := s.RemovePhoto("ghost"); err != nil {
		t.Errorf("RemovePhoto(ghost): %v", err)
	}
}

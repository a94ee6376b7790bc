package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/photomscompanion/models"
)

// Store is the companion's local sqlite persistence: the saved login session
// and the offline photo mirror.
type Store struct {
	db *gorm.DB
}

// Open initializes the database at the given path and migrates the schema.
func Open(dataSourceName string) (*Store, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(1) // sqlite; the companion is the only writer
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&SessionRecord{}, &PhotoMirror{}); err != nil {
		return nil, fmt.Errorf("store: migration failed: %w", err)
	}

	log.Printf("store: database initialized at %s", dataSourceName)
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SessionRecord is the single persisted login session.
type SessionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"not null"`
	UserJSON  string `gorm:"not null"`
	ExpiresAt int64  `gorm:"not null"` // Unix seconds
	UpdatedAt time.Time
}

// sessionRowID pins the session to one row; there is never more than one
// logged-in account per companion process.
const sessionRowID = 1

// SaveSession persists the current login so it survives restarts.
func (s *Store) SaveSession(token string, user *models.User, expiresAt time.Time) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("store: encoding session user: %w", err)
	}

	record := SessionRecord{
		ID:        sessionRowID,
		Token:     token,
		UserJSON:  string(userJSON),
		ExpiresAt: expiresAt.Unix(),
	}
	if err := s.db.Save(&record).Error; err != nil {
		return fmt.Errorf("store: saving session: %w", err)
	}
	return nil
}

// LoadSession restores the persisted login. Returns gorm.ErrRecordNotFound
// when no session has been saved.
func (s *Store) LoadSession() (string, *models.User, time.Time, error) {
	var record SessionRecord
	if err := s.db.First(&record, sessionRowID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil, time.Time{}, err
		}
		return "", nil, time.Time{}, fmt.Errorf("store: loading session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(record.UserJSON), &user); err != nil {
		return "", nil, time.Time{}, fmt.Errorf("store: decoding session user: %w", err)
	}
	return record.Token, &user, time.Unix(record.ExpiresAt, 0), nil
}

// DeleteSession removes the persisted login on logout.
func (s *Store) DeleteSession() error {
	result := s.db.Delete(&SessionRecord{}, sessionRowID)
	if result.Error != nil {
		return fmt.Errorf("store: deleting session: %w", result.Error)
	}
	return nil
}

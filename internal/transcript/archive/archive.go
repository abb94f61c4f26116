// Package archive persists finalized transcript entries to a local sqlite
// database so conversations survive dashboard reloads.
package archive

import (
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	platerr "github.com/TicoDavid/RAGbox.co-sub003/internal/platform/errors"
	"github.com/TicoDavid/RAGbox.co-sub003/internal/transcript"
)

// Record is one archived transcript line. Tool metadata stays empty for
// plain utterances.
type Record struct {
	ID         string `gorm:"primaryKey;size:36"`
	Speaker    string `gorm:"size:16;index"`
	Text       string
	SpokenAt   time.Time `gorm:"index"`
	ToolCallID string    `gorm:"size:64"`
	ToolName   string    `gorm:"size:64"`
	ToolStatus string    `gorm:"size:16"`
	ToolParams datatypes.JSON
	ToolResult datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Record) TableName() string {
	return "transcript_entries"
}

// Store wraps the sqlite-backed archive.
type Store struct {
	db *gorm.DB
}

// Open opens the archive database, creating and migrating it as needed.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, platerr.Wrap(platerr.KindStorage, "archive", "open database", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, platerr.Wrap(platerr.KindStorage, "archive", "migrate schema", err)
	}
	return &Store{db: db}, nil
}

// SaveEntry upserts one entry. Tool entries are written twice, on
// announcement and on resolution; the second write wins.
func (s *Store) SaveEntry(entry transcript.Entry) error {
	rec := Record{
		ID:       entry.ID,
		Speaker:  string(entry.Speaker),
		Text:     entry.Text,
		SpokenAt: entry.Timestamp,
	}
	if tc := entry.ToolCall; tc != nil {
		rec.ToolCallID = tc.ID
		rec.ToolName = tc.Name
		rec.ToolStatus = string(tc.Status)
		if tc.Parameters != nil {
			data, err := sonic.Marshal(tc.Parameters)
			if err != nil {
				return platerr.Wrap(platerr.KindStorage, "archive", "encode tool parameters", err)
			}
			rec.ToolParams = datatypes.JSON(data)
		}
		if tc.Result != nil {
			data, err := sonic.Marshal(tc.Result)
			if err != nil {
				return platerr.Wrap(platerr.KindStorage, "archive", "encode tool result", err)
			}
			rec.ToolResult = datatypes.JSON(data)
		}
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return platerr.Wrap(platerr.KindStorage, "archive", "save entry", err)
	}
	return nil
}

// Recent returns the newest entries in conversation order, oldest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	var records []Record
	err := s.db.Order("spoken_at desc, id desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, platerr.Wrap(platerr.KindStorage, "archive", "load entries", err)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// CountBySpeaker reports how many entries each speaker has archived.
func (s *Store) CountBySpeaker() (map[string]int64, error) {
	type row struct {
		Speaker string
		N       int64
	}
	var rows []row
	err := s.db.Model(&Record{}).
		Select("speaker, count(*) as n").
		Group("speaker").
		Scan(&rows).Error
	if err != nil {
		return nil, platerr.Wrap(platerr.KindStorage, "archive", "count entries", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Speaker] = r.N
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Video 一条已完成下载的记录，只用于查询，不参与是否续传的判断
type Video struct {
	Path      string `json:"path"`
	ChannelID int64  `json:"channel_id"`
	MessageID int    `json:"message_id"`
	FileName  string `json:"file_name"`
	Size      int64  `json:"size"`
	Message   string `json:"message"`
	Finished  string `json:"finished"`
}

type Ledger struct {
	db *sql.DB
}

func Open(dbPath string) (*Ledger, error) {
	// busy_timeout 缓解多进程同时写入
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode=WAL&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS videos (
		path TEXT PRIMARY KEY,
		channel_id INTEGER,
		message_id INTEGER,
		file_name TEXT,
		size INTEGER,
		message TEXT,
		finished TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_videos_file_name ON videos(file_name);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record 同一路径重复下载时覆盖旧记录
func (l *Ledger) Record(ctx context.Context, v *Video) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
            INSERT OR REPLACE INTO videos
            (path, channel_id, message_id, file_name, size, message, finished)
            VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		v.Path,
		v.ChannelID,
		v.MessageID,
		v.FileName,
		v.Size,
		v.Message,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", v.Path, err)
	}
	return tx.Commit()
}

func (l *Ledger) FindByName(ctx context.Context, fileName string) ([]*Video, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT path, channel_id, message_id, file_name, size, message, finished
		FROM videos WHERE file_name = ? ORDER BY finished;`, fileName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lis := make([]*Video, 0, 3)
	for rows.Next() {
		var v Video
		if err = rows.Scan(&v.Path, &v.ChannelID, &v.MessageID, &v.FileName, &v.Size, &v.Message, &v.Finished); err != nil {
			return nil, err
		}
		lis = append(lis, &v)
	}
	return lis, rows.Err()
}

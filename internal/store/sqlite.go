package store

import (
	"database/sql"
	"embed"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pantauharga/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

const configKeyCSVSeeded = "csv_seeded"

// SQLiteStore 以 SQLite 保存录入数据，读取顺序为写入顺序
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 创建新的 SQLite 存储
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// 确保 data 目录存在
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, eris.Wrap(err, "failed to create data directory")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "failed to ping database")
	}

	// SQLite 建议单连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return eris.Wrap(err, "failed to read schema.sql")
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return eris.Wrap(err, "failed to execute schema")
	}
	return nil
}

// Read 按写入顺序读取全部录入数据
func (s *SQLiteStore) Read() ([]model.Observation, error) {
	rows, err := s.db.Query(`
		SELECT sumber, komoditi, tingkat, provinsi, tanggal, harga
		FROM user_inputs
		ORDER BY id
	`)
	if err != nil {
		return nil, eris.Wrap(err, "query user inputs failed")
	}
	defer rows.Close()

	out := []model.Observation{}
	for rows.Next() {
		var o model.Observation
		var tanggal, harga string
		if err := rows.Scan(&o.Source, &o.Commodity, &o.Tier, &o.Province, &tanggal, &harga); err != nil {
			return nil, eris.Wrap(err, "scan user input failed")
		}
		if o.Date, err = model.ParseDate(tanggal); err != nil {
			return nil, eris.Wrapf(err, "invalid tanggal in database")
		}
		if o.Price, err = decimal.NewFromString(harga); err != nil {
			return nil, eris.Wrapf(err, "invalid harga in database")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate user inputs failed")
	}
	return out, nil
}

// Append 追加一行
func (s *SQLiteStore) Append(o model.Observation) error {
	o = Normalize(o)
	if err := Validate(o); err != nil {
		return err
	}
	if err := s.BatchInsert([]model.Observation{o}); err != nil {
		return err
	}
	zap.L().Info("observation appended",
		zap.String("backend", BackendSQLite),
		zap.String("komoditi", o.Commodity),
		zap.String("tanggal", o.Date.String()),
	)
	return nil
}

// BatchInsert 在一个事务中批量插入
func (s *SQLiteStore) BatchInsert(records []model.Observation) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return eris.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO user_inputs (sumber, komoditi, tingkat, provinsi, tanggal, harga)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return eris.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Source, r.Commodity, r.Tier, r.Province, r.Date.String(), r.Price.String()); err != nil {
			return eris.Wrap(err, "failed to insert record")
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// seedFromCSV 首次使用 SQLite 时导入已有的 CSV 录入数据（只执行一次）
func (s *SQLiteStore) seedFromCSV(csvPath string) error {
	if csvPath == "" {
		return nil
	}
	if _, err := s.getConfig(configKeyCSVSeeded); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return eris.Wrapf(err, "config key %s", configKeyCSVSeeded)
	}

	rows, err := NewCSVStore(csvPath).Read()
	if err != nil {
		return err
	}
	if err := s.BatchInsert(rows); err != nil {
		return err
	}
	if err := s.setConfig(configKeyCSVSeeded, csvPath); err != nil {
		return err
	}
	if len(rows) > 0 {
		zap.L().Info("user inputs imported from csv", zap.String("file", csvPath), zap.Int("rows", len(rows)))
	}
	return nil
}

func (s *SQLiteStore) getConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	return value, err
}

func (s *SQLiteStore) setConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	if err != nil {
		return eris.Wrapf(err, "set config %s", key)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

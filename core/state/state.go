package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/GenesisAN/gbk2utf8/core/converter"
)

// 数据库桶名称
const (
	runsBucket  = "runs"
	filesBucket = "files"
)

// StateDirFailed 目录读取失败时写入的状态
const StateDirFailed = "dir-failed"

// ErrRunNotFound 指定的运行记录不存在
var ErrRunNotFound = errors.New("运行记录不存在")

// Run 一次运行的记录
type Run struct {
	ID          string    `json:"id"`
	Dir         string    `json:"dir"`
	ScanOnly    bool      `json:"scan_only"`
	Backup      bool      `json:"backup"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished,omitempty"`
	Visited     int       `json:"visited"`
	Converted   int       `json:"converted"`
	Convertible int       `json:"convertible"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
}

// FileRecord 单个文件的处理记录
type FileRecord struct {
	Path         string    `json:"path"`
	State        string    `json:"state"`
	Reason       string    `json:"reason,omitempty"`
	Label        string    `json:"label,omitempty"`
	Confidence   float64   `json:"confidence"`
	ChineseCount int       `json:"chinese_count"`
	MaxRun       int       `json:"max_run"`
	BackupPath   string    `json:"backup_path,omitempty"`
	Error        string    `json:"error,omitempty"`
	Time         time.Time `json:"time"`
}

// Manager bbolt 运行日志
type Manager struct {
	db     *bbolt.DB
	dbPath string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewManager 打开（或创建）日志数据库
func NewManager(dbPath string, logger *zap.Logger) (*Manager, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建运行日志目录失败: %w", err)
		}
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	manager := &Manager{
		db:     db,
		dbPath: dbPath,
		logger: logger.Named("journal"),
	}

	if err := manager.initBuckets(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("初始化数据库桶失败: %w，关闭数据库也失败: %v", err, closeErr)
		}
		return nil, fmt.Errorf("初始化数据库桶失败: %w", err)
	}

	return manager, nil
}

// initBuckets 初始化数据库桶
func (m *Manager) initBuckets() error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{runsBucket, filesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("创建数据库桶 %s 失败: %w", bucket, err)
			}
		}
		return nil
	})
}

// BeginRun 开始一次新的运行，ID 为 ULID，按时间有序
func (m *Manager) BeginRun(dir string, scanOnly, backup bool) (*Run, error) {
	id := ulid.Make()
	run := &Run{
		ID:       id.String(),
		Dir:      dir,
		ScanOnly: scanOnly,
		Backup:   backup,
		Started:  ulid.Time(id.Time()),
	}

	err := m.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.Bucket([]byte(filesBucket)).CreateBucket([]byte(run.ID)); err != nil {
			return fmt.Errorf("创建运行记录桶失败: %w", err)
		}
		return putJSON(tx.Bucket([]byte(runsBucket)), run.ID, run)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("开始运行", zap.String("run", run.ID), zap.String("dir", dir))
	return run, nil
}

// Record 写入单个文件的记录
func (m *Manager) Record(runID string, record *FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.Time.IsZero() {
		record.Time = time.Now()
	}

	return m.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(filesBucket)).Bucket([]byte(runID))
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return putJSON(bucket, record.Path, record)
	})
}

// FinishRun 保存运行的最终统计
func (m *Manager) FinishRun(run *Run) error {
	run.Finished = time.Now()
	return m.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket([]byte(runsBucket)), run.ID, run)
	})
}

// ListRuns 按时间倒序列出运行记录，limit <= 0 表示不限
func (m *Manager) ListRuns(limit int) ([]*Run, error) {
	var runs []*Run

	err := m.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(runsBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("解析运行记录 %s 失败: %w", k, err)
			}
			runs = append(runs, &run)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})

	return runs, err
}

// Files 返回某次运行的所有文件记录，按路径排序
func (m *Manager) Files(runID string) ([]*FileRecord, error) {
	var records []*FileRecord

	err := m.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(filesBucket)).Bucket([]byte(runID))
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return bucket.ForEach(func(k, v []byte) error {
			var record FileRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("解析文件记录 %s 失败: %w", k, err)
			}
			records = append(records, &record)
			return nil
		})
	})

	return records, err
}

// Close 关闭数据库
func (m *Manager) Close() error {
	return m.db.Close()
}

func putJSON(bucket *bbolt.Bucket, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", key, err)
	}
	return bucket.Put([]byte(key), data)
}

// NewFileRecord 由处理结果生成记录
func NewFileRecord(result converter.FileResult) *FileRecord {
	record := &FileRecord{
		Path:         result.Path,
		State:        string(result.State),
		Reason:       string(result.Reason),
		Label:        string(result.Verdict.Label),
		Confidence:   result.Verdict.Confidence,
		ChineseCount: result.Verdict.ChineseCount,
		MaxRun:       result.Verdict.MaxRun,
		BackupPath:   result.BackupPath,
	}
	if result.Err != nil {
		record.Error = result.Err.Error()
	}
	return record
}

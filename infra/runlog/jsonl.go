package runlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	corerunlog "github.com/kilianp07/hive/core/runlog"
)

// JSONLConfig configures a rotating JSON-lines run logger. Sizes are in
// megabytes, ages in days.
type JSONLConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

// JSONL appends one corerunlog.Record per line and rotates the file once it
// grows past MaxSizeMB.
type JSONL struct {
	mu  sync.Mutex
	out *lumberjack.Logger
	enc *json.Encoder
	now func() time.Time
}

// NewJSONL creates the parent directory of cfg.Path if needed.
func NewJSONL(cfg JSONLConfig) (*JSONL, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("jsonl logger: path is required")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return &JSONL{out: lj, enc: json.NewEncoder(lj), now: time.Now}, nil
}

func (j *JSONL) LogScalar(name string, value float64, prefix string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(corerunlog.Record{Name: name, Prefix: prefix, Value: value, Time: j.now().UTC()})
}

func (j *JSONL) LogMetrics(metrics map[string]float64, prefix string) error {
	return corerunlog.LogEach(metrics, prefix, j.LogScalar)
}

func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.out.Close()
}

// ReadJSONL returns the records stored at path and in its rotated backups,
// oldest first. Lines that do not decode are skipped.
func ReadJSONL(path string) ([]corerunlog.Record, error) {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	backups, err := filepath.Glob(base + "-*" + ext + "*")
	if err != nil {
		return nil, err
	}
	files := append(backups, path)
	var res []corerunlog.Record
	for _, f := range files {
		recs, err := readJSONLFile(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, recs...)
	}
	sort.SliceStable(res, func(a, b int) bool { return res[a].Time.Before(res[b].Time) })
	return res, nil
}

func readJSONLFile(path string) ([]corerunlog.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	var res []corerunlog.Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r corerunlog.Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		res = append(res, r)
	}
	return res, scanner.Err()
}

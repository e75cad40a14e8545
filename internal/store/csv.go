package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"pantauharga/internal/model"
	"pantauharga/internal/parser"
)

// CSVStore 以 CSV 文件保存录入数据
//
// 每次 Append 都会完整读取文件、在末尾追加一行、再整体重写。
// 同一进程内的追加通过互斥锁串行化；多个进程同时写入同一文件时没有任何保护，
// 后写者会覆盖先写者（丢数据）。写入过程中崩溃可能导致文件被截断。
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore 创建 CSV 存储
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path 文件路径
func (s *CSVStore) Path() string { return s.path }

// Read 读取全部录入数据；文件不存在时返回空切片
func (s *CSVStore) Read() ([]model.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Append 追加一行并重写整个文件
// 文件中已有的行按原样写回（包括价格无效、读取时被跳过的行）
func (s *CSVStore) Append(o model.Observation) error {
	o = Normalize(o)
	if err := Validate(o); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords()
	if err != nil {
		return err
	}
	records = append(records, recordOf(o))

	if err := s.write(records); err != nil {
		return err
	}

	zap.L().Info("observation appended",
		zap.String("file", s.path),
		zap.String("komoditi", o.Commodity),
		zap.String("tanggal", o.Date.String()),
		zap.Int("rows", len(records)),
	)
	return nil
}

// Close CSV 存储无需释放资源
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) read() ([]model.Observation, error) {
	records, err := s.readRecords()
	if err != nil {
		return nil, err
	}
	return observations(records), nil
}

func (s *CSVStore) readRecords() ([]record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []record{}, nil
		}
		return nil, eris.Wrapf(err, "read %s", s.path)
	}
	records, err := decodeRecords(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", s.path)
	}
	return records, nil
}

func (s *CSVStore) write(records []record) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return eris.Wrapf(err, "create directory for %s", s.path)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return eris.Wrapf(err, "write %s", s.path)
	}
	return nil
}

// record CSV 文件中的一行，价格保留原始文本
type record struct {
	Source    string     `csv:"Sumber"`
	Commodity string     `csv:"Komoditi"`
	Tier      string     `csv:"Tingkat"`
	Province  string     `csv:"Provinsi"`
	Date      model.Date `csv:"Tanggal"`
	Price     string     `csv:"Harga"`
}

func recordOf(o model.Observation) record {
	return record{
		Source:    o.Source,
		Commodity: o.Commodity,
		Tier:      o.Tier,
		Province:  o.Province,
		Date:      o.Date,
		Price:     o.Price.String(),
	}
}

// observations 转换为价格观测；价格为空、非数字或为负的行被跳过
func observations(records []record) []model.Observation {
	rows := make([]model.Observation, 0, len(records))
	dropped := 0
	for _, r := range records {
		price, ok := parser.ParsePrice(r.Price)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, model.Observation{
			Source:    r.Source,
			Commodity: r.Commodity,
			Tier:      r.Tier,
			Province:  r.Province,
			Date:      r.Date,
			Price:     price,
		})
	}
	if dropped > 0 {
		zap.L().Debug("rows with invalid price skipped", zap.Int("dropped", dropped))
	}
	return rows
}

func decodeRecords(r io.Reader) ([]record, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []record{}, nil
		}
		return nil, eris.Wrap(err, "read csv header")
	}

	records := []record{}
	for {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrap(err, "decode csv row")
		}
		records = append(records, rec)
	}
	return records, nil
}

func encodeRecords(records []record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)

	if len(records) == 0 {
		if err := enc.EncodeHeader(record{}); err != nil {
			return nil, eris.Wrap(err, "encode csv header")
		}
	} else if err := enc.Encode(records); err != nil {
		return nil, eris.Wrap(err, "encode csv rows")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

// DecodeCSV 解析带表头的录入数据 CSV，日期统一截断到日，价格无效的行被跳过
func DecodeCSV(r io.Reader) ([]model.Observation, error) {
	records, err := decodeRecords(r)
	if err != nil {
		return nil, err
	}
	return observations(records), nil
}

// EncodeCSV 以统一口径表头写出录入数据
func EncodeCSV(rows []model.Observation) ([]byte, error) {
	records := make([]record, len(rows))
	for i, o := range rows {
		records[i] = recordOf(o)
	}
	return encodeRecords(records)
}

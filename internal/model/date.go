package model

import (
	"encoding"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DateFormat 日期写出格式（ISO-8601）
const DateFormat = "2006-01-02"

// 读取时依次尝试的格式，允许单数字月/日以及带时间部分的写法
// 斜杠写法按 月/日/年 顺序
var readDateLayouts = []string{
	"2006-1-2",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/1/2",
	"1/2/2006",
	"2-Jan-2006",
}

// Date 日粒度日期，不含时分秒
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate 返回规范化后的日期（例如 2 月 30 日会滚动到 3 月）
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// DateOf 截断时间的时分秒部分
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// Today 当天日期
func Today() Date { return DateOf(time.Now()) }

// Time 当天零点 (UTC)
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// IsZero 是否为零值
func (d Date) IsZero() bool { return d == Date{} }

// Before 是否早于 x
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }

// After 是否晚于 x
func (d Date) After(x Date) bool { return d.Time().After(x.Time()) }

// AddDays 加减天数
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateFormat)
}

// ParseDate 宽松解析日期字符串，时间部分被丢弃
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	for _, layout := range readDateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, eris.Errorf("invalid date %q, want format %q", str, DateFormat)
}

// MustParseDate 同 ParseDate，失败时 panic（仅用于测试和常量）
func MustParseDate(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText 空串解析为零值
func (d *Date) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(str))
}

var (
	_ encoding.TextMarshaler   = Date{}
	_ encoding.TextUnmarshaler = (*Date)(nil)
	_ json.Marshaler           = Date{}
	_ json.Unmarshaler         = (*Date)(nil)
)

package model

import "time"

// TimestampLayout はエンティティのタイムスタンプに使う固定幅のUTC ISO-8601形式。
// 小数秒を9桁固定で出力するため、文字列の辞書順が時刻順と一致する。
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamp は時刻をタイムスタンプ文字列に変換する。
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp はタイムスタンプ文字列を時刻に戻す。
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

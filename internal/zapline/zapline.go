// Package zapline writes log lines in the format of a
// zap.NewProduction-generated logger without importing zap.
package zapline

import (
	"encoding/json"
	"io"
	"strconv"
	"time"
)

// Line is a single log line. JSON holds the fields of a
// log.With(zap.Namespace("json")) logger and is omitted when nil.
type Line struct {
	Level     string                `json:"level"`
	Timestamp SixDecimalPlacesFloat `json:"ts"`
	Logger    string                `json:"logger"`
	Message   string                `json:"msg"`
	JSON      map[string]string     `json:"json,omitempty"`
}

// SixDecimalPlacesFloat is a float always marshaled with six decimals.
type SixDecimalPlacesFloat float64

func (f SixDecimalPlacesFloat) MarshalJSON() ([]byte, error) {
	var ret []byte
	ret = strconv.AppendFloat(ret, float64(f), 'f', 6, 64)
	return ret, nil
}

// Timestamp returns t as fractional unix seconds.
func Timestamp(t time.Time) SixDecimalPlacesFloat {
	return SixDecimalPlacesFloat(float64(t.UnixNano()) / float64(time.Second))
}

// Encode writes one line to w. It is not safe for concurrent use with
// other writers of w.
func Encode(w io.Writer, at time.Time, level, logger, msg string, kv map[string]string) error {
	return json.NewEncoder(w).Encode(Line{
		Level:     level,
		Timestamp: Timestamp(at),
		Logger:    logger,
		Message:   msg,
		JSON:      kv,
	})
}

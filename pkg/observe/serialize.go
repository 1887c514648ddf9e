package observe

import (
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot renders v for a span attribute. JSON is tried first, then
// fmt.Sprint. ok is false only when both panic.
func Snapshot(v any) (s string, ok bool) {
	if s, ok := marshal(v); ok {
		return s, true
	}
	return sprint(v)
}

func marshal(v any) (s string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s, ok = "", false
		}
	}()
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func sprint(v any) (s string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("snapshot failed", "panic", r)
			s, ok = "", false
		}
	}()
	return fmt.Sprint(v), true
}

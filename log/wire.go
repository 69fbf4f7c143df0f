package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// MessageWire is the JSON form of a log record sent by a monitored program
// through the "log" host function.
type MessageWire struct {
	Timestamp time.Time  `json:"timestamp"`
	Attrs     []AttrWire `json:"attrs,omitempty"`
	Level     string     `json:"level"`
	Message   string     `json:"message"`
}

// AttrWire is a single flattened attribute.
type AttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`  // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "group", "any"
	Value string `json:"value"` // String representation of the value
}

// EncodeRecord converts a record to its wire form.
func EncodeRecord(record slog.Record) ([]byte, error) {
	msg := MessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = append(msg.Attrs, toAttrWire(attr))
		return true
	})
	return json.Marshal(msg)
}

// Replay decodes a wire message and logs it through logger, tagged with
// attrs. Payloads that are not a wire message are logged verbatim at info
// level.
func Replay(ctx context.Context, logger *slog.Logger, data []byte, attrs ...slog.Attr) {
	var msg MessageWire
	if err := json.Unmarshal(data, &msg); err != nil || msg.Message == "" {
		logger.LogAttrs(ctx, slog.LevelInfo, string(data), attrs...)
		return
	}

	level := slog.LevelInfo
	if msg.Level != "" {
		if err := level.UnmarshalText([]byte(msg.Level)); err != nil {
			level = slog.LevelInfo
		}
	}
	for _, a := range msg.Attrs {
		attrs = append(attrs, fromAttrWire(a))
	}
	logger.LogAttrs(ctx, level, msg.Message, attrs...)
}

// fromAttrWire restores typed values where the type round-trips.
func fromAttrWire(w AttrWire) slog.Attr {
	switch w.Type {
	case "int64":
		if v, err := strconv.ParseInt(w.Value, 10, 64); err == nil {
			return slog.Int64(w.Key, v)
		}
	case "uint64":
		if v, err := strconv.ParseUint(w.Value, 10, 64); err == nil {
			return slog.Uint64(w.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(w.Value); err == nil {
			return slog.Bool(w.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(w.Value, 64); err == nil {
			return slog.Float64(w.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, w.Value); err == nil {
			return slog.Time(w.Key, v)
		}
	case "duration":
		if v, err := time.ParseDuration(w.Value); err == nil {
			return slog.Duration(w.Key, v)
		}
	case "json":
		return slog.Any(w.Key, json.RawMessage(w.Value))
	}
	return slog.String(w.Key, w.Value)
}

// toAttrWire converts a slog.Attr to AttrWire.
func toAttrWire(attr slog.Attr) AttrWire {
	wire := AttrWire{
		Key: attr.Key,
	}
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(attr.Value.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = strconv.FormatFloat(attr.Value.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = attr.Value.Duration().String()
	case slog.KindAny:
		if v := attr.Value.Any(); v != nil {
			if err, isErr := v.(error); isErr {
				wire.Type = "error"
				wire.Value = err.Error()
			} else if data, marshalErr := json.Marshal(v); marshalErr == nil {
				wire.Type = "json"
				wire.Value = string(data)
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", v)
			}
		} else {
			wire.Type = "any"
			wire.Value = "<nil>"
		}
	case slog.KindGroup:
		wire.Type = "group"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	default:
		wire.Type = "any"
		wire.Value = fmt.Sprintf("%v", attr.Value.Any())
	}
	return wire
}

// types.go - Core API Types (Basis-Typen, Errors, Options, Metriken)
// Enthaelt: StatusError, Metrics, Options, DefaultOptions, FromMap
package api

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the toolfence server logs for details"
	}
}

// Metrics enthaelt Laufzeit-Metriken einer Chat-Anfrage
type Metrics struct {
	TotalDuration time.Duration `json:"total_duration,omitempty"`
	EvalCount     int           `json:"eval_count,omitempty"`
	ToolCallCount int           `json:"tool_call_count,omitempty"`
}

func (m *Metrics) Summary() {
	if m.TotalDuration > 0 {
		fmt.Fprintf(os.Stderr, "total duration:       %v\n", m.TotalDuration)
	}

	if m.EvalCount > 0 {
		fmt.Fprintf(os.Stderr, "eval count:           %d chunk(s)\n", m.EvalCount)
		if m.TotalDuration > 0 {
			fmt.Fprintf(os.Stderr, "eval rate:            %.2f chunks/s\n", float64(m.EvalCount)/m.TotalDuration.Seconds())
		}
	}

	if m.ToolCallCount > 0 {
		fmt.Fprintf(os.Stderr, "tool calls:           %d\n", m.ToolCallCount)
	}
}

// Options sind die Sampling-Optionen, die an das Backend weitergereicht werden.
type Options struct {
	NumPredict       int      `json:"num_predict,omitempty"`
	Seed             int      `json:"seed,omitempty"`
	TopK             int      `json:"top_k,omitempty"`
	TopP             float32  `json:"top_p,omitempty"`
	Temperature      float32  `json:"temperature,omitempty"`
	PresencePenalty  float32  `json:"presence_penalty,omitempty"`
	FrequencyPenalty float32  `json:"frequency_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`

	// MaxPrefix und MaxFenceBytes ueberschreiben die Detector-Limits
	MaxPrefix     int `json:"max_prefix,omitempty"`
	MaxFenceBytes int `json:"max_fence_bytes,omitempty"`
}

// DefaultOptions is the default set of options for [ChatRequest]; these
// values are used unless the user specifies other values explicitly.
func DefaultOptions() Options {
	return Options{
		NumPredict:  -1,
		Temperature: 0.8,
		TopK:        40,
		TopP:        0.9,
		Seed:        -1,
	}
}

func (opts *Options) FromMap(m map[string]any) error {
	valueOpts := reflect.ValueOf(opts).Elem() // names of the fields in the options struct
	typeOpts := reflect.TypeOf(opts).Elem()   // types of the fields in the options struct

	// build map of json struct tags to their types
	jsonOpts := make(map[string]reflect.StructField)
	for _, field := range reflect.VisibleFields(typeOpts) {
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag != "" {
			jsonOpts[jsonTag] = field
		}
	}

	for key, val := range m {
		opt, ok := jsonOpts[key]
		if !ok {
			slog.Warn("invalid option provided", "option", key)
			continue
		}

		field := valueOpts.FieldByName(opt.Name)
		if !field.IsValid() || !field.CanSet() || val == nil {
			continue
		}

		switch field.Kind() {
		case reflect.Int:
			switch t := val.(type) {
			case int:
				field.SetInt(int64(t))
			case int64:
				field.SetInt(t)
			case float64:
				// when JSON unmarshals numbers, it uses float64, not int
				field.SetInt(int64(t))
			default:
				return fmt.Errorf("option %q must be of type integer", key)
			}
		case reflect.Float32:
			// JSON unmarshals to float64
			val, ok := val.(float64)
			if !ok {
				return fmt.Errorf("option %q must be of type float32", key)
			}
			field.SetFloat(val)
		case reflect.Slice:
			// JSON unmarshals to []any, not []string
			val, ok := val.([]any)
			if !ok {
				return fmt.Errorf("option %q must be of type array", key)
			}
			slice := make([]string, len(val))
			for i, item := range val {
				str, ok := item.(string)
				if !ok {
					return fmt.Errorf("option %q must be of an array of strings", key)
				}
				slice[i] = str
			}
			field.Set(reflect.ValueOf(slice))
		default:
			return fmt.Errorf("unknown type loading config params: %v", field.Kind())
		}
	}

	return nil
}

package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Field describes one config key, taken from struct tags.
type Field struct {
	Key      string // e.g., "list.page_size"
	Default  string
	Desc     string
	Min      int // 0 = no limit
	Max      int // 0 = no limit
	Type     string
	Category string
	Env      string // full environment variable name
	Secret   bool   // masked by `config list`
}

var (
	fieldsOnce  sync.Once
	fieldsCache []Field
)

// Fields returns every config key, sorted.
func Fields() []Field {
	fieldsOnce.Do(func() {
		var fields []Field
		cfg := &Config{}
		extractFields(reflect.TypeOf(cfg).Elem(), &fields)
		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})
		fieldsCache = fields
	})
	return fieldsCache
}

// extractFields walks one level of nested sections.
func extractFields(t reflect.Type, fields *[]Field) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		key := field.Tag.Get("config")
		if key == "" {
			if field.Type.Kind() == reflect.Struct && field.Tag.Get("toml") != "" {
				extractFields(field.Type, fields)
			}
			continue
		}

		f := Field{
			Key:      key,
			Default:  field.Tag.Get("default"),
			Desc:     field.Tag.Get("desc"),
			Category: strings.Split(key, ".")[0],
			Secret:   strings.HasSuffix(key, "api_key"),
		}
		if e := field.Tag.Get("env"); e != "" {
			f.Env = EnvPrefix + e
		}
		if minStr := field.Tag.Get("min"); minStr != "" {
			f.Min, _ = strconv.Atoi(minStr)
		}
		if maxStr := field.Tag.Get("max"); maxStr != "" {
			f.Max, _ = strconv.Atoi(maxStr)
		}
		switch field.Type.Kind() {
		case reflect.Int:
			f.Type = "int"
		case reflect.String:
			f.Type = "string"
		}

		*fields = append(*fields, f)
	}
}

// FindField looks up a key, accepting a few aliases.
func FindField(key string) (Field, bool) {
	key = normalizeKey(key)
	for _, f := range Fields() {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns all config keys.
func Keys() []string {
	fields := Fields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	aliases := map[string]string{
		"database.dsn":   "database.url",
		"list.pagesize":  "list.page_size",
		"list.debounce":  "list.debounce_ms",
		"mail.apikey":    "mail.api_key",
		"ui.language":    "ui.locale",
		"otel.endpoint":  "telemetry.endpoint",
		"log.max_size":   "log.max_size_mb",
		"log.maxbackups": "log.max_backups",
	}
	if normalized, ok := aliases[key]; ok {
		return normalized
	}
	return key
}

// section finds the nested struct whose toml tag is name.
func section(cfg *Config, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == name {
			nested := v.Field(i)
			return nested, nested.Kind() == reflect.Struct
		}
	}
	return reflect.Value{}, false
}

// fieldByKey finds the settable field for a normalized key.
func fieldByKey(cfg *Config, key string) (reflect.Value, bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return reflect.Value{}, false
	}
	nested, ok := section(cfg, parts[0])
	if !ok {
		return reflect.Value{}, false
	}
	nt := nested.Type()
	for i := 0; i < nt.NumField(); i++ {
		if nt.Field(i).Tag.Get("config") == key {
			return nested.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func getFieldValue(cfg *Config, key string) (string, bool) {
	fv, ok := fieldByKey(cfg, normalizeKey(key))
	if !ok {
		return "", false
	}
	switch fv.Kind() {
	case reflect.String:
		return fv.String(), true
	case reflect.Int:
		return strconv.FormatInt(fv.Int(), 10), true
	}
	return "", false
}

func setFieldValue(cfg *Config, key, value string) error {
	field, ok := FindField(key)
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	fv, ok := fieldByKey(cfg, field.Key)
	if !ok {
		return fmt.Errorf("field not found: %s", field.Key)
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(value)
		return nil

	case reflect.Int:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if field.Min != 0 && intVal < field.Min {
			return fmt.Errorf("value %d is below minimum %d", intVal, field.Min)
		}
		if field.Max != 0 && intVal > field.Max {
			return fmt.Errorf("value %d exceeds maximum %d", intVal, field.Max)
		}
		fv.SetInt(int64(intVal))
		return nil
	}

	return fmt.Errorf("unsupported field type for %s", field.Key)
}

// FieldsByCategory groups fields by their section.
func FieldsByCategory() map[string][]Field {
	result := make(map[string][]Field)
	for _, f := range Fields() {
		result[f.Category] = append(result[f.Category], f)
	}
	return result
}

// HelpText renders all keys grouped by section for `config --help`.
func HelpText() string {
	var sb strings.Builder

	byCategory := FieldsByCategory()
	categories := []struct {
		key   string
		title string
	}{
		{"database", "Database"},
		{"list", "Invite list"},
		{"mail", "Mail delivery"},
		{"log", "Logging"},
		{"ui", "Interface"},
		{"telemetry", "Telemetry"},
	}

	for _, cat := range categories {
		fields, ok := byCategory[cat.key]
		if !ok || len(fields) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("  %s:\n", cat.title))
		for _, f := range fields {
			defaultStr := ""
			if f.Default != "" {
				defaultStr = fmt.Sprintf(" (default: %s)", f.Default)
			}
			sb.WriteString(fmt.Sprintf("    %-22s %s%s\n", f.Key, f.Desc, defaultStr))
		}
		sb.WriteString("\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

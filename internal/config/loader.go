package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Loader applies environment-variable overrides onto a Config via
// reflection, preferring a field's explicit `env` tag and falling back
// to an auto-generated LOPPER_<PATH> name otherwise. Grounded on the
// teacher's internal/config/loader.go Loader.
type Loader struct {
	envPrefix string
}

// NewLoader returns a Loader using the LOPPER_ environment prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "LOPPER_"}
}

// LoadFromEnvironment applies environment overrides onto cfg in place.
func (l *Loader) LoadFromEnvironment(cfg *Config) error {
	return l.applyEnvOverrides(reflect.ValueOf(cfg).Elem(), "")
}

func (l *Loader) applyEnvOverrides(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		envName := fieldType.Tag.Get("env")
		if envName == "" {
			name := strings.ToUpper(fieldType.Name)
			if prefix != "" {
				envName = l.envPrefix + prefix + "_" + name
			} else {
				envName = l.envPrefix + name
			}
		}

		switch field.Kind() {
		case reflect.Struct:
			newPrefix := strings.ToUpper(fieldType.Name)
			if prefix != "" {
				newPrefix = prefix + "_" + newPrefix
			}
			if err := l.applyEnvOverrides(field, newPrefix); err != nil {
				return err
			}
		case reflect.String:
			if value := os.Getenv(envName); value != "" {
				field.SetString(value)
			}
		case reflect.Bool:
			if value := os.Getenv(envName); value != "" {
				if b, err := strconv.ParseBool(value); err == nil {
					field.SetBool(b)
				}
			}
		case reflect.Int:
			if value := os.Getenv(envName); value != "" {
				if n, err := strconv.ParseInt(value, 10, 64); err == nil {
					field.SetInt(n)
				}
			}
		case reflect.Slice:
			if value := os.Getenv(envName); value != "" && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(value, ",")
				out := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for i, p := range parts {
					out.Index(i).SetString(strings.TrimSpace(p))
				}
				field.Set(out)
			}
		}
	}
	return nil
}

package config

import "fmt"

// Validate checks a Config for internally-inconsistent settings: the
// priority-bound and mutually-exclusive strict/permissive checks that
// matter for lopper's own domain.
func Validate(cfg *Config) error {
	if cfg.Strict && cfg.Permissive {
		return fmt.Errorf("strict and permissive modes are mutually exclusive")
	}
	if cfg.PriorityMin < 1 || cfg.PriorityMin > 9 {
		return fmt.Errorf("priority_min must be between 1 and 9, got %d", cfg.PriorityMin)
	}
	if cfg.PriorityMax < 1 || cfg.PriorityMax > 9 {
		return fmt.Errorf("priority_max must be between 1 and 9, got %d", cfg.PriorityMax)
	}
	if cfg.PriorityMin > cfg.PriorityMax {
		return fmt.Errorf("priority_min (%d) cannot exceed priority_max (%d)", cfg.PriorityMin, cfg.PriorityMax)
	}
	switch cfg.OutputFormat {
	case "yaml", "dts", "json", "":
	default:
		return fmt.Errorf("unsupported output_format %q", cfg.OutputFormat)
	}
	for _, dir := range cfg.AssistSearchPath {
		if dir == "" {
			return fmt.Errorf("assist_search_path entries must not be empty")
		}
	}
	return nil
}

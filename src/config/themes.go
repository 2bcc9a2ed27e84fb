package config

import "econ-dashboard/src/models"

// BuiltinThemes returns the themes available without any YAML configuration.
func BuiltinThemes() map[string]models.MThemeConfig {
	return map[string]models.MThemeConfig{
		"light": {
			Template: "plotly_white",
			Palette: []string{
				"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
				"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
			},
			Colors: map[string]string{
				"CPIAUCSL": "blue",
				"PSAVERT":  "green",
				"PCEC":     "red",
			},
			DefaultColor: "black",
		},
		"dark": {
			Template: "plotly_dark",
			Palette: []string{
				"#818CF8", "#34D399", "#FBBF24", "#F87171", "#A78BFA",
				"#22D3EE", "#F472B6", "#A3E635", "#FB923C", "#93C5FD",
			},
			DefaultColor: "white",
		},
	}
}

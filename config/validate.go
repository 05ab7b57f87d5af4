package config

import (
	"fmt"
	"slices"
	"strings"
)

// Formats lists the accepted summary formats
var Formats = []string{"text", "json", "yaml"}

// ValidationErrors collects every problem found in a configuration
type ValidationErrors []string

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	if len(ve) == 1 {
		return ve[0]
	}
	return fmt.Sprintf("%d validation errors: %s", len(ve), strings.Join(ve, "; "))
}

// Validate checks c and returns ValidationErrors, or nil when c is usable
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, validateSwapAxis(c.SwapAxis)...)

	if c.AutoEdge <= 0 || c.AutoEdge > 360 {
		errors = append(errors, fmt.Sprintf("auto_edge must be in (0, 360], got %g", c.AutoEdge))
	}
	if c.MaxRepeats <= 0 {
		errors = append(errors, fmt.Sprintf("max_repeats must be positive, got %d", c.MaxRepeats))
	}
	if !slices.Contains(Formats, c.Format) {
		errors = append(errors, fmt.Sprintf("format '%s' is not one of %s", c.Format, strings.Join(Formats, ", ")))
	}
	if c.Preview != "" && c.PreviewWidth <= 0 {
		errors = append(errors, fmt.Sprintf("preview_width must be positive, got %d", c.PreviewWidth))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server port %d out of range 1-65535", c.Server.Port))
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func validateSwapAxis(axes []string) []string {
	var errors []string
	if len(axes)%2 != 0 {
		errors = append(errors, fmt.Sprintf("swap_axis needs pairs of axes, got %d entries", len(axes)))
	}
	for _, a := range axes {
		if _, ok := axisIndex(a); !ok {
			errors = append(errors, fmt.Sprintf("swap_axis entry '%s' must be x, y or z", a))
		}
	}
	for i := 0; i+1 < len(axes); i += 2 {
		if strings.EqualFold(axes[i], axes[i+1]) {
			errors = append(errors, fmt.Sprintf("swap_axis pair %d swaps %s with itself", i/2+1, axes[i]))
		}
	}
	return errors
}

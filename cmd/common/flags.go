package common

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// CommonFlags contains flags that are shared across multiple commands
type CommonFlags struct {
	// Environment and configuration
	EnvFile *string

	// Logging and output
	Verbose  *bool
	Silent   *bool
	NoEmojis *bool

	Version *bool
}

// RegisterCommonFlags registers common flags on fs
func RegisterCommonFlags(fs *flag.FlagSet) *CommonFlags {
	return &CommonFlags{
		EnvFile: fs.String("env", ".env", "Environment file path"),

		Verbose:  fs.Bool("verbose", false, "Enable verbose (debug) logging"),
		Silent:   fs.Bool("silent", false, "Enable silent mode (minimal output)"),
		NoEmojis: fs.Bool("no-emojis", false, "Disable emoji output"),

		Version: fs.Bool("version", false, "Show version information"),
	}
}

// NewCLILogger builds a console logger honoring the common output flags
func (f *CommonFlags) NewCLILogger(out io.Writer) *Logger {
	l := NewLogger(out)
	l.ShowEmojis = !*f.NoEmojis
	l.SilentMode = *f.Silent
	if *f.Verbose {
		l.Level = LogLevelDebug
	}
	return l
}

// FlagValidator provides flag validation utilities
type FlagValidator struct {
	errors []string
}

// NewFlagValidator creates a new flag validator
func NewFlagValidator() *FlagValidator {
	return &FlagValidator{
		errors: make([]string, 0),
	}
}

// ValidateChoice validates that a string is one of the allowed choices
func (v *FlagValidator) ValidateChoice(name, value string, choices []string) *FlagValidator {
	for _, choice := range choices {
		if value == choice {
			return v
		}
	}
	return v.AddError(fmt.Sprintf("%s must be one of [%s], got: %s", name, strings.Join(choices, ", "), value))
}

// ValidateExclusive reports an error when both flags are set
func (v *FlagValidator) ValidateExclusive(nameA string, setA bool, nameB string, setB bool) *FlagValidator {
	if setA && setB {
		v.AddError(fmt.Sprintf("-%s and -%s cannot be used together", nameA, nameB))
	}
	return v
}

// AddError adds a custom error message
func (v *FlagValidator) AddError(message string) *FlagValidator {
	v.errors = append(v.errors, message)
	return v
}

// HasErrors returns true if there are validation errors
func (v *FlagValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// GetErrors returns all validation errors
func (v *FlagValidator) GetErrors() []string {
	return v.errors
}

// GetError returns a combined error if there are validation errors
func (v *FlagValidator) GetError() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.New(strings.Join(v.errors, "; "))
}

// UsageFormatter prints a usage banner with examples
type UsageFormatter struct {
	AppName     string
	Description string
	Examples    []UsageExample
}

// UsageExample is one example invocation
type UsageExample struct {
	Command     string
	Description string
}

// NewUsageFormatter creates a new usage formatter
func NewUsageFormatter(appName, description string) *UsageFormatter {
	return &UsageFormatter{
		AppName:     appName,
		Description: description,
	}
}

// AddExample adds a usage example
func (u *UsageFormatter) AddExample(command, description string) *UsageFormatter {
	u.Examples = append(u.Examples, UsageExample{Command: command, Description: description})
	return u
}

// Install replaces fs.Usage with the formatted banner
func (u *UsageFormatter) Install(fs *flag.FlagSet) {
	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintf(w, "%s - %s\n\n", u.AppName, u.Description)
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n\nFlags:\n", u.AppName)
		fs.PrintDefaults()
		if len(u.Examples) > 0 {
			fmt.Fprintf(w, "\nExamples:\n")
			for _, ex := range u.Examples {
				fmt.Fprintf(w, "  # %s\n  %s\n\n", ex.Description, ex.Command)
			}
		}
	}
}

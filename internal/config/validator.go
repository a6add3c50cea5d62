package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
	"github.com/NCSOPHAL/landscapist/render"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	sourceNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

	scaleModes = map[string]struct{}{
		string(render.ScaleFit):      {},
		string(render.ScaleFill):     {},
		string(render.ScaleStretch):  {},
		string(render.ScaleOriginal): {},
	}
)

// validatorInstance configures and returns the shared validator instance
// used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("log_level", func(fl validator.FieldLevel) bool {
			_, err := zerolog.ParseLevel(strings.ToLower(fl.Field().String()))
			return err == nil
		})

		_ = v.RegisterValidation("scale_mode", func(fl validator.FieldLevel) bool {
			_, ok := scaleModes[fl.Field().String()]
			return ok
		})

		_ = v.RegisterValidation("source_name", func(fl validator.FieldLevel) bool {
			return sourceNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("image_source", func(fl validator.FieldLevel) bool {
			return isValidImageSource(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// isValidImageSource accepts network URLs, git sources, and syntactically
// valid file paths without touching the filesystem.
func isValidImageSource(source string) bool {
	if strings.TrimSpace(source) == "" {
		return false
	}
	if strings.Contains(source, "\x00") {
		return false
	}

	if parsed, err := url.Parse(source); err == nil {
		scheme := strings.ToLower(parsed.Scheme)
		switch {
		case scheme == "http" || scheme == "https":
			return parsed.Host != ""
		case scheme == "file":
			return parsed.Path != ""
		case strings.HasPrefix(scheme, "git+"):
			// The file to extract rides in the fragment.
			return parsed.Fragment != ""
		}
	}

	// Absolute or explicitly relative file paths.
	if strings.HasPrefix(source, "/") {
		return !strings.Contains(source, "/../") && !strings.HasSuffix(source, "/..")
	}
	return strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../")
}

// ValidateConfig performs schema and cross-field validation on the
// configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return pkgerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]int, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if _, exists := seen[src.Name]; exists {
			return pkgerrors.NewValidationError(fieldForSource(i, "name"),
				fmt.Sprintf("duplicate source name %q", src.Name), nil)
		}
		seen[src.Name] = i
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return pkgerrors.NewValidationError(field, msg, err)
	}

	return pkgerrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForSource(index int, field string) string {
	return fmt.Sprintf("sources[%d].%s", index, field)
}

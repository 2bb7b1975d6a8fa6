package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// LogValidationErrors reports every failed field on its own line so an
// operator can fix the whole configuration file in one pass.
func LogValidationErrors(err error) {
	if err == nil {
		return
	}
	for _, fieldError := range err.(validator.ValidationErrors) {
		name := stripStructPrefix(fieldError.Namespace())
		switch fieldError.Tag() {
		case "required":
			log.Errorf("ConfigError: Field %s is required but was not found", name)
		case "oneof":
			log.Errorf("ConfigError: Field %s must be one of [%s], got %v", name, fieldError.Param(), fieldError.Value())
		case "nefield":
			log.Errorf("ConfigError: Fields %s and %s cannot share a value", name, fieldError.Param())
		default:
			log.Errorf("ConfigError: Field %s has invalid value %v: %s", name, fieldError.Value(), fieldError.Tag())
		}
	}
}

// stripStructPrefix drops the outermost struct name from a validator
// namespace, so LauncherConfiguration.Backend reads as Backend.
func stripStructPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}

package config

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// knownVerbs is the fixed verb set the transport dispatches on.
var knownVerbs = map[string]struct{}{
	nethttp.MethodGet:     {},
	nethttp.MethodPost:    {},
	nethttp.MethodPut:     {},
	nethttp.MethodPatch:   {},
	nethttp.MethodDelete:  {},
	nethttp.MethodHead:    {},
	nethttp.MethodOptions: {},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	validateErr  error
)

func validatorInstance() (*validator.Validate, error) {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		validateErr = v.RegisterValidation("http_verb", func(fl validator.FieldLevel) bool {
			_, ok := knownVerbs[strings.ToUpper(fl.Field().String())]
			return ok
		})
		validate = v
	})
	return validate, validateErr
}

// Validate checks the loaded configuration: retry limits and timeout must be
// non-negative, method keys must be known HTTP verbs (case-insensitive), and
// the log level must be a recognized name.
func Validate(cfg *Config) error {
	v, err := validatorInstance()
	if err != nil {
		return fmt.Errorf("validator setup: %w", err)
	}

	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("field %s failed %q validation", first.Namespace(), first.Tag())
		}
		return err
	}

	return nil
}

package patch

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mikepea/quorum/pkg/quorum/apierror"
)

// Check validates a present field with validator tags, using the same
// engine gin binds with. Null passes only when nullable is set.
func Check[T any](name string, f Field[T], nullable bool, tags string) error {
	if !f.Present {
		return nil
	}
	if f.Null {
		if nullable {
			return nil
		}
		return apierror.Validation(name + ": may not be null")
	}
	if tags == "" {
		return nil
	}
	if err := engine().Var(f.Value, tags); err != nil {
		return apierror.FieldError(name, err)
	}
	return nil
}

func engine() *validator.Validate {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return v
	}
	return validator.New()
}

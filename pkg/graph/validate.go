package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that node and edge ids are present and unique
// and that every edge names a source and target.
// Dangling edges are structurally valid and left to traversal to ignore.
func (g *Graph) Validate() error {
	if err := validate.Struct(g); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidGraph, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Graph.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "unique":
		return fmt.Sprintf("%s must have unique ids", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

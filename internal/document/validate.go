package document

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validatorSet reports struct tag violations using document field names.
type validatorSet struct {
	v *validator.Validate
}

func newValidatorSet() *validatorSet {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &validatorSet{v: v}
}

// check validates s, locating the first failing field inside mapping.
func (vs *validatorSet) check(mapping *yaml.Node, path string, s any) error {
	err := vs.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errorAt(mapping, path, err)
	}

	fe := fieldErrs[0]
	field := fe.Field()
	node := mapping
	if mapping.Kind == yaml.MappingNode {
		key := strings.SplitN(field, "[", 2)[0]
		if value := fieldNode(mapping, key); value != nil {
			node = value
		}
	}
	return errorAt(node, path+"."+field, describe(fe))
}

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("required field is missing or empty")
	case "gte":
		return fmt.Errorf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Errorf("failed %q validation", fe.Tag())
	}
}

package companies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RecordValidator checks company records before they enter the dataset.
type RecordValidator struct {
	validate *validator.Validate
}

// Rejection describes a record dropped during validation.
type Rejection struct {
	Index int
	Name  string
	Err   error
}

// NewRecordValidator constructs a validator for company records.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns an error describing the first invalid field of rec.
func (v *RecordValidator) Validate(rec Record) error {
	if strings.TrimSpace(rec.Name) == "" {
		return errors.New("name is required")
	}
	if err := v.validate.Struct(rec); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
		}
		return err
	}
	return nil
}

// Filter splits records into valid ones and rejections, preserving order.
func (v *RecordValidator) Filter(records []Record) ([]Record, []Rejection) {
	kept := make([]Record, 0, len(records))
	var rejected []Rejection
	for i, rec := range records {
		if err := v.Validate(rec); err != nil {
			rejected = append(rejected, Rejection{Index: i, Name: rec.Name, Err: err})
			continue
		}
		kept = append(kept, rec)
	}
	return kept, rejected
}

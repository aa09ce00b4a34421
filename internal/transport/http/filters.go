package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"seafreight/internal/config"
	apierrors "seafreight/internal/errors"
	apiv1 "seafreight/pkg/contracts/api/v1"
	"seafreight/pkg/contracts/domain"
)

// filterValidate checks the wire shape of filter parameters before they
// become a domain FilterState.
var filterValidate = newFilterValidator()

func newFilterValidator() *validator.Validate {
	v := validator.New()
	// Error messages name the query parameter, not the Go field.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseFilterState reads the filter selection from query parameters.
// Multi-value parameters accept repeated keys and comma-separated lists;
// the ETA bounds are YYYY-MM-DD and eta_to must not precede eta_from.
func parseFilterState(r *http.Request) (domain.FilterState, error) {
	q := r.URL.Query()
	query := apiv1.FilterQuery{
		Origins:      splitMulti(q["origins"]),
		Destinations: splitMulti(q["destinations"]),
		Statuses:     splitMulti(q["statuses"]),
		ETAFrom:      strings.TrimSpace(q.Get("eta_from")),
		ETATo:        strings.TrimSpace(q.Get("eta_to")),
	}

	if err := filterValidate.Struct(&query); err != nil {
		return domain.FilterState{}, filterValidationError(err)
	}

	state := domain.FilterState{
		Origins:      query.Origins,
		Destinations: query.Destinations,
		Statuses:     query.Statuses,
	}
	if query.ETAFrom != "" {
		t, err := time.Parse(config.DateFormat, query.ETAFrom)
		if err != nil {
			return domain.FilterState{}, apierrors.ErrValidation("eta_from", "eta_from must be a YYYY-MM-DD date")
		}
		state.ETAFrom = &t
	}
	if query.ETATo != "" {
		t, err := time.Parse(config.DateFormat, query.ETATo)
		if err != nil {
			return domain.FilterState{}, apierrors.ErrValidation("eta_to", "eta_to must be a YYYY-MM-DD date")
		}
		state.ETATo = &t
	}
	if state.ETAFrom != nil && state.ETATo != nil && state.ETATo.Before(*state.ETAFrom) {
		return domain.FilterState{}, apierrors.ErrValidation("eta_to", "eta_to must not be before eta_from")
	}

	return state, nil
}

// splitMulti flattens repeated query keys and comma-separated values into
// one trimmed list, dropping empty entries.
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// filterValidationError converts validator field errors into the API's
// validation error shape.
func filterValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ves := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ves = append(ves, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: filterFieldMessage(fe),
		})
	}
	return apierrors.NewValidationErrors(ves)
}

func filterFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Field())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s entries must not be empty", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

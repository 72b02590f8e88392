package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/errors"
	"github.com/trytocodeee/Indian-Unemployment-Dashboard/internal/models"
)

// datastarParam carries the signals of datastar GET requests.
const datastarParam = "datastar"

var validate = validator.New(validator.WithRequiredStructEnabled())

// criteriaParams is the wire form of models.FilterCriteria, shared by query
// strings and datastar signals.
type criteriaParams struct {
	Region  string     `json:"region" validate:"omitempty,max=100"`
	Start   string     `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string     `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Compare stringList `json:"compare" validate:"max=36,dive,max=100"`
}

// stringList accepts a JSON array or a comma separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = splitList(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("compare must be a string or a list of strings")
	}
	*l = splitList([]string{s})
	return nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseCriteria reads filter criteria from datastar signals when the request
// carries them and from plain query parameters otherwise.
func parseCriteria(r *http.Request) (models.FilterCriteria, error) {
	var p criteriaParams
	q := r.URL.Query()
	if q.Has(datastarParam) {
		if err := datastar.ReadSignals(r, &p); err != nil {
			return models.FilterCriteria{}, errors.Wrap(err, errors.CodeBadRequest, "Invalid signals")
		}
	} else {
		p = criteriaParams{
			Region:  strings.TrimSpace(q.Get("region")),
			Start:   strings.TrimSpace(q.Get("start")),
			End:     strings.TrimSpace(q.Get("end")),
			Compare: splitList(q["compare"]),
		}
	}
	return p.criteria()
}

func (p criteriaParams) criteria() (models.FilterCriteria, error) {
	if err := validate.Struct(p); err != nil {
		return models.FilterCriteria{}, validationError(err)
	}

	c := models.FilterCriteria{
		Region:  strings.TrimSpace(p.Region),
		Compare: []string(p.Compare),
	}
	if p.Start != "" {
		t, _ := time.Parse(models.DateLayout, p.Start)
		c.Start = &t
	}
	if p.End != "" {
		t, _ := time.Parse(models.DateLayout, p.End)
		c.End = &t
	}
	return c, nil
}

// parseRange is parseCriteria for the JSON API, which rejects an end date
// before the start date. The page and the SSE endpoint accept such a range
// and show an inline notice instead.
func parseRange(r *http.Request) (models.FilterCriteria, error) {
	c, err := parseCriteria(r)
	if err != nil {
		return c, err
	}
	if c.Start != nil && c.End != nil && c.End.Before(*c.Start) {
		return models.FilterCriteria{}, errors.ValidationFields(map[string]string{
			"end": "must not be before start",
		})
	}
	return c, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(err, errors.CodeValidation, "Invalid request parameters")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name, _, _ := strings.Cut(strings.ToLower(fe.StructField()), "[")
		switch fe.Tag() {
		case "datetime":
			fields[name] = "must be a date in YYYY-MM-DD format"
		case "max":
			if fe.Kind().String() == "slice" {
				fields[name] = fmt.Sprintf("at most %s values allowed", fe.Param())
			} else {
				fields[name] = fmt.Sprintf("must be at most %s characters", fe.Param())
			}
		default:
			fields[name] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
	}
	return errors.ValidationFields(fields)
}

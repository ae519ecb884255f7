package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var errInvalidRequest = errors.New("invalid request")

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// formBinder is implemented by request DTOs that can also be posted as an
// HTML form.
type formBinder interface {
	bindForm(url.Values) error
}

type duplicatesRequest struct {
	Columns  []string `json:"columns" validate:"dive,required,max=256"`
	Behavior string   `json:"behavior" validate:"required,max=32"`
}

func (d *duplicatesRequest) bindForm(v url.Values) error {
	d.Columns = v["columns"]
	d.Behavior = v.Get("behavior")
	return nil
}

type dropMissingRequest struct {
	// Threshold is a percentage; nil uses the configured default.
	Threshold *float64 `json:"threshold"`
}

func (d *dropMissingRequest) bindForm(v url.Values) error {
	raw := strings.TrimSpace(v.Get("threshold"))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("threshold %q is not a number", raw)
	}
	d.Threshold = &f
	return nil
}

type fillRequest struct {
	Columns []string `json:"columns" validate:"dive,required,max=256"`
	Method  string   `json:"method" validate:"required,max=32"`
	Value   string   `json:"value" validate:"max=1024"`
}

func (f *fillRequest) bindForm(v url.Values) error {
	f.Columns = v["columns"]
	f.Method = v.Get("method")
	f.Value = v.Get("value")
	return nil
}

// columnsRequest keeps every column when Columns is absent. An explicit
// empty list keeps none.
type columnsRequest struct {
	Columns *[]string `json:"columns" validate:"omitempty,dive,required,max=256"`
}

func (c *columnsRequest) bindForm(v url.Values) error {
	if cols, ok := v["columns"]; ok {
		c.Columns = &cols
	}
	return nil
}

// selection returns the requested columns, nil meaning all of them.
func (c *columnsRequest) selection() []string {
	if c.Columns == nil {
		return nil
	}
	if *c.Columns == nil {
		return []string{}
	}
	return *c.Columns
}

// decodeRequest fills dst from a JSON body or a posted form and validates it.
func (s *Server) decodeRequest(r *http.Request, dst formBinder) error {
	if render.GetRequestContentType(r) == render.ContentTypeJSON {
		if err := render.DecodeJSON(r.Body, dst); err != nil {
			return fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		if err := dst.bindForm(r.PostForm); err != nil {
			return fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
	}

	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError lists the failing fields.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", errInvalidRequest, strings.Join(parts, ", "))
}

// queryList reads a repeated query parameter, skipping empty values.
// Column names may contain commas, so values are never split.
func queryList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseRowsParam reads the preview size. "all" and 0 mean every row.
func parseRowsParam(r *http.Request, defaultVal int) int {
	val := r.URL.Query().Get("rows")
	if val == "" {
		return defaultVal
	}
	if strings.EqualFold(val, "all") {
		return 0
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

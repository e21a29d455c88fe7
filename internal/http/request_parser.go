// Package http serves the expense JSON API.
//
// This file implements parsing of request bodies and query strings.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

const maxBodyBytes = 1 << 20

var ErrBodyTooLarge = errors.New("request body too large")

// RequestBodyParser reads a JSON or form-encoded body once.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most 1 MiB of the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(p.err, &tooLarge) {
		p.err = ErrBodyTooLarge
	}
	return p
}

// Parse decodes the body as JSON when the content type says so or the body
// starts with '{', otherwise as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(p.contentType)
	if mediaType == "application/json" || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a sanitized value from the parsed body.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// FormInput collects the four expense fields.
func (p *RequestBodyParser) FormInput() core.FormInput {
	return core.FormInput{
		Date:        p.Get(core.FieldDate),
		Amount:      p.Get(core.FieldAmount),
		Category:    p.Get(core.FieldCategory),
		Description: p.Get(core.FieldDescription),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ListParams is the parsed query of list and export requests.
type ListParams struct {
	Filter core.FilterSpec
	Field  core.SortField
	Order  core.SortOrder
}

// ParseListParams reads category, startDate, endDate, q, sort and order.
// Sorting defaults to date descending.
func ParseListParams(q url.Values) (ListParams, error) {
	params := ListParams{
		Filter: core.FilterSpec{
			Category:    sanitizeInput(q.Get("category")),
			StartDate:   sanitizeInput(q.Get("startDate")),
			EndDate:     sanitizeInput(q.Get("endDate")),
			SearchQuery: sanitizeInput(q.Get("q")),
		},
		Field: core.SortByDate,
		Order: core.Desc,
	}
	if params.Filter.Category == "" {
		params.Filter.Category = core.AllCategories
	}

	if v := q.Get("sort"); v != "" {
		f, err := core.ParseSortField(v)
		if err != nil {
			return ListParams{}, err
		}
		params.Field = f
	}
	if v := q.Get("order"); v != "" {
		o, err := core.ParseSortOrder(v)
		if err != nil {
			return ListParams{}, err
		}
		params.Order = o
	}
	return params, nil
}

// ParsePositiveInt returns def for an empty value and rejects values
// outside [1, max].
func ParsePositiveInt(v string, def, max int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("must be an integer between 1 and %d", max)
	}
	return n, nil
}

// ParseBool accepts 1/true/yes (case-insensitive); anything else is false.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

package http

// Helpers for reading expense forms from HTMX requests. Forms normally
// arrive url-encoded; a JSON body (htmx json-enc) is accepted too.

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/view"
)

const maxFormBytes = 64 << 10

var ErrInvalidID = errors.New("invalid expense id")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxFormBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
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

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseExpenseForm reads the five form fields exactly as typed, minus
// control characters and surrounding whitespace. Numeric and date checks are
// left to the controller so a bad value can be echoed back in the form.
func ParseExpenseForm(r *http.Request) (view.FormState, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return view.FormState{}, err
	}
	return view.FormState{
		Title:       p.Get("title"),
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Date:        p.Get("date"),
		Description: p.Get("description"),
	}, nil
}

// ParseExpenseID reads the {id} path value.
func ParseExpenseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// IsConfirmed reports whether the user accepted the confirmation dialog.
// hx-confirm only lets the request through on OK and the button carries
// confirmed=true in its URL. htmx 1.x sends hx-vals in the body for DELETE,
// so a form or JSON body is read too. Anything else counts as declined.
func IsConfirmed(r *http.Request) bool {
	if v := r.URL.Query().Get("confirmed"); v != "" {
		return strings.EqualFold(v, "true")
	}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return false
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return false
	}
	return strings.EqualFold(p.Get("confirmed"), "true")
}

// sanitizeInput removes control characters except tab and newlines, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

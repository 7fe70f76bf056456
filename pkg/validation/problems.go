// Package validation collects field problems from a pure validation pass so
// services can reject a request before touching storage.
package validation

import (
	"fmt"

	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
)

// Problem describes one rejected field.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problems accumulates field problems in the order they were found.
type Problems []Problem

func (p *Problems) Add(field, message string) {
	*p = append(*p, Problem{Field: field, Message: message})
}

func (p *Problems) Addf(field, format string, args ...any) {
	p.Add(field, fmt.Sprintf(format, args...))
}

func (p Problems) Empty() bool {
	return len(p) == 0
}

// Has reports whether field already has a problem recorded.
func (p Problems) Has(field string) bool {
	for _, problem := range p {
		if problem.Field == field {
			return true
		}
	}
	return false
}

// Err converts the problems into a VALIDATION_ERROR, or nil when there are none.
func (p Problems) Err() error {
	return p.ErrWithCode(pkgerrors.CodeValidation)
}

// ErrWithCode is Err for problems that map to another code, such as CONFLICT.
func (p Problems) ErrWithCode(code pkgerrors.Code) error {
	if len(p) == 0 {
		return nil
	}
	msg := p[0].Field + " " + p[0].Message
	if len(p) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(p)-1)
	}
	details := make(map[string]string, len(p))
	for _, problem := range p {
		if _, seen := details[problem.Field]; !seen {
			details[problem.Field] = problem.Message
		}
	}
	return pkgerrors.New(code, msg).WithDetails(details)
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
)

func TestProblemsErr(t *testing.T) {
	var p Problems
	assert.NoError(t, p.Err())
	assert.True(t, p.Empty())

	p.Add("endDate", "must not be before startDate")
	p.Addf("percentage", "must be between %d and %d", 5, 40)
	require.True(t, p.Has("percentage"))

	err := p.Err()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "endDate must not be before startDate (and 1 more)", typed.Message())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be between 5 and 40", details["percentage"])
}

func TestProblemsErrWithCode(t *testing.T) {
	var p Problems
	p.Add("bookIds", "already discounted")
	assert.True(t, pkgerrors.IsCode(p.ErrWithCode(pkgerrors.CodeConflict), pkgerrors.CodeConflict))
}

package fieldscrape_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/fieldscrape"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := fieldscrape.Errorf(fieldscrape.ENOTFOUND, "record %q not found", "test")

	assert.Equal(t, fieldscrape.ENOTFOUND, fieldscrape.ErrorCode(err))
	assert.Equal(t, "record \"test\" not found", fieldscrape.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, fieldscrape.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, fieldscrape.ErrorMessage(nil))
}

func TestErrorCode_ForeignError(t *testing.T) {
	t.Parallel()

	err := errors.New("disk on fire")

	assert.Equal(t, fieldscrape.EINTERNAL, fieldscrape.ErrorCode(err))
	assert.Equal(t, "Internal error.", fieldscrape.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	t.Run("exposes cause to errors.Is", func(t *testing.T) {
		t.Parallel()

		err := fieldscrape.WrapError(fieldscrape.ETIMEOUT, context.DeadlineExceeded, "extraction timed out")

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, fieldscrape.ETIMEOUT, fieldscrape.ErrorCode(err))
		assert.Contains(t, err.Error(), "deadline exceeded")
	})

	t.Run("code survives further wrapping", func(t *testing.T) {
		t.Parallel()

		inner := fieldscrape.Errorf(fieldscrape.ECACHE, "store unavailable")
		err := fmt.Errorf("writing raw content: %w", inner)

		assert.Equal(t, fieldscrape.ECACHE, fieldscrape.ErrorCode(err))
		assert.Equal(t, "store unavailable", fieldscrape.ErrorMessage(err))
	})
}

func TestExtractionFailed(t *testing.T) {
	t.Parallel()

	t.Run("deadline maps to ETIMEOUT", func(t *testing.T) {
		t.Parallel()

		err := fieldscrape.ExtractionFailed(fmt.Errorf("call: %w", context.DeadlineExceeded), "model call")

		assert.Equal(t, fieldscrape.ETIMEOUT, fieldscrape.ErrorCode(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("other failures map to EEXTRACT", func(t *testing.T) {
		t.Parallel()

		err := fieldscrape.ExtractionFailed(errors.New("connection refused"), "model call")

		assert.Equal(t, fieldscrape.EEXTRACT, fieldscrape.ErrorCode(err))
		assert.Equal(t, "model call", fieldscrape.ErrorMessage(err))
	})
}

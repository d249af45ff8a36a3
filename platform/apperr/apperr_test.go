package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusSplitsValidationFromNotFound(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad date"), http.StatusBadRequest},
		{BadRequest("bad body"), http.StatusBadRequest},
		{NotFound("visit not found for seller"), http.StatusNotFound},
		{Unprocessable("name is required"), http.StatusUnprocessableEntity},
		{BusinessLogic("could not update", nil), http.StatusInternalServerError},
		{Internal("boom"), http.StatusInternalServerError},
		{Conflict("dup"), http.StatusConflict},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), tc.err.Message)
	}
}

func TestCategoryIsStable(t *testing.T) {
	assert.Equal(t, "validation error", Validation("x").Category())
	assert.Equal(t, "not found", NotFound("x").Category())
	assert.Equal(t, "business logic error", BusinessLogic("x", nil).Category())
}

func TestGetKindFollowsWrappedChain(t *testing.T) {
	base := NotFound("client not in visit")
	wrapped := fmt.Errorf("handler: %w", base)

	assert.Equal(t, KindNotFound, GetKind(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
}

func TestErrorIncludesOp(t *testing.T) {
	err := Validation("seller does not exist").WithOp("visits.create")
	assert.Equal(t, "visits.create: seller does not exist", err.Error())
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := BusinessLogic("error creating scheduled visit", cause)
	assert.ErrorIs(t, err, cause)
}

package errs

import (
	"fmt"
	"io"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	assert.True(t, Is(Config("bad scale %v", -1), ErrConfig))
	assert.True(t, Is(Schema("field %s missing", "c_name"), ErrSchema))
	assert.True(t, Is(Resource("buffer %d", 3), ErrResource))
	assert.True(t, Is(IO("pwrite: %v", io.ErrShortWrite), ErrIO))

	assert.False(t, Is(Config("x"), ErrIO))
	assert.False(t, Is(IO("x"), ErrConfig))
}

func TestIsWalksAnnotationChain(t *testing.T) {
	err := errors.Annotate(Config("bad batch size"), "starting iterator")
	assert.True(t, Is(err, ErrConfig))
	assert.False(t, Is(err, ErrSchema))

	wrapped := fmt.Errorf("run failed: %w", IO("pwrite: short write"))
	assert.True(t, Is(wrapped, ErrIO))
}

func TestMessagesCarryContext(t *testing.T) {
	err := Config("unknown format %q", "orc")
	assert.Contains(t, err.Error(), `unknown format "orc"`)
	assert.Contains(t, err.Error(), "config error")
}

func TestWrapIO(t *testing.T) {
	assert.NoError(t, WrapIO(nil, "ignored"))

	err := WrapIO(io.ErrUnexpectedEOF, "read footer")
	assert.True(t, Is(err, ErrIO))
	assert.Contains(t, err.Error(), "read footer")
	assert.Contains(t, err.Error(), io.ErrUnexpectedEOF.Error())
}

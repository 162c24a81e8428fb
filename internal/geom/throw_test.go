package geom

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestHandlePanicRecover(t *testing.T) {
	testFn := func(shouldThrow bool, shouldPanic bool) (err error) {
		defer func() {
			recoveredErr := HandlePanicRecover(recover())
			if recoveredErr != nil {
				err = recoveredErr
			}
		}()

		if shouldThrow {
			Fatalf("kaboom!")
		}

		if shouldPanic {
			panic("true panic")
		}

		return nil
	}

	t.Run("with throw", func(t *testing.T) {
		err := testFn(true, false)
		assert.EqualError(t, err, "kaboom!")
	})

	t.Run("with real panic", func(t *testing.T) {
		assert.Panics(t, func() {
			testFn(false, true)
		})
	})

	t.Run("no error", func(t *testing.T) {
		err := testFn(false, false)
		assert.NoError(t, err)
	})

	t.Run("runtime errors are not swallowed", func(t *testing.T) {
		assert.Panics(t, func() {
			func() {
				defer func() {
					HandlePanicRecover(recover())
				}()
				var s []int
				_ = s[3]
			}()
		})
	})
}

func TestThrowfKeepsKind(t *testing.T) {
	err := func() (err error) {
		defer func() {
			err = HandlePanicRecover(recover())
		}()
		Throwf(ErrDegenerateInput, "only %d points", 2)
		return nil
	}()
	assert.True(t, errors.Is(err, ErrDegenerateInput))
	assert.EqualError(t, err, "only 2 points: degenerate input")
}

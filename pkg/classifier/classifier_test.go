package classifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type closingClassifier struct {
	ClassifyFunc
	closed bool
}

func (c *closingClassifier) Close() error {
	c.closed = true
	return nil
}

func TestRegistry(t *testing.T) {
	Register("test-fixed", func(opts Options) (Classifier, error) {
		return ClassifyFunc(func([]int8) (Result, error) {
			return Result{Score: 9, Threshold: opts.ZeroPoint}, nil
		}), nil
	})
	Register("test-broken", func(Options) (Classifier, error) {
		return nil, &MissingOpError{Op: "LOGISTIC"}
	})
	require.Panics(t, func() { Register("test-fixed", nil) })
	require.Subset(t, Backends(), []string{"test-broken", "test-fixed"})

	c, err := New("test-fixed", Options{ZeroPoint: -3})
	require.NoError(t, err)
	res, err := c.Classify(nil)
	require.NoError(t, err)
	require.Equal(t, Result{Score: 9, Threshold: -3}, res)

	_, err = New("test-broken", Options{})
	var missing *MissingOpError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "failed to add LOGISTIC op", err.Error())

	_, err = New("nope", Options{})
	require.IsType(t, &ErrUnknownBackend{}, err)
}

func TestClose(t *testing.T) {
	c := &closingClassifier{}
	require.NoError(t, Close(c))
	require.True(t, c.closed)
	require.NoError(t, Close(ClassifyFunc(nil)))
}

func TestQuantize(t *testing.T) {
	testCases := []struct {
		v, scale  float32
		zeroPoint int8
		expect    int8
	}{
		{0, 1.0 / 256, -128, -128},
		{0.5, 1.0 / 256, -128, 0},
		{1, 1.0 / 256, -128, 127},
		{0.25, 1.0 / 256, -128, -64},
		{-3.4, 1, 0, -3},
		{-3.6, 1, 0, -4},
		{2.5, 0, 0, 3},
		{1000, 1, 0, 127},
		{-1000, 1, 0, -128},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, Quantize(tc.v, tc.scale, tc.zeroPoint), "%v/%v+%d", tc.v, tc.scale, tc.zeroPoint)
	}
}

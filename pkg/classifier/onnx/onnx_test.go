package onnx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/robotalks/sbd.go/pkg/classifier"
)

func TestConcreteShape(t *testing.T) {
	shape := concreteShape(ort.NewShape(-1, 2037))
	require.Equal(t, ort.NewShape(1, 2037), shape)
	require.Equal(t, int64(2037), shape.FlattenedSize())
}

func TestElementSize(t *testing.T) {
	n, err := elementSize(ort.TensorElementDataTypeInt8)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	n, err = elementSize(ort.TensorElementDataTypeFloat)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	_, err = elementSize(ort.TensorElementDataTypeString)
	require.Error(t, err)
}

func TestCheckWorkspace(t *testing.T) {
	var i8, f32 ort.TensorElementDataType = ort.TensorElementDataTypeInt8, ort.TensorElementDataTypeFloat
	testCases := []struct {
		name            string
		inType, outType ort.TensorElementDataType
		featureLen      int
		budget          int
		exhausted       bool
	}{
		{"int8 default", i8, i8, 2037, classifier.DefaultWorkspaceSize, false},
		{"float default", f32, f32, 2037, classifier.DefaultWorkspaceSize, false},
		{"int8 exact", i8, i8, 2037, 2038, false},
		{"int8 one short", i8, i8, 2037, 2037, true},
		{"float small", f32, i8, 2037, 4 * 1024, true},
		{"unlimited", f32, f32, 2037, 0, false},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			err := checkWorkspace(c.inType, c.outType, c.featureLen, c.budget)
			if c.exhausted {
				require.Equal(t, classifier.ErrWorkspaceExhausted, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	err := checkWorkspace(ort.TensorElementDataTypeString, i8, 2037, 0)
	require.Error(t, err)
	require.NotEqual(t, classifier.ErrWorkspaceExhausted, err)
}

func TestMissingOp(t *testing.T) {
	err := missingOp(errors.New("Error creating session: Could not find an implementation for Sigmoid(13) node with name 'dense_1/Sigmoid'"))
	var missing *classifier.MissingOpError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "Sigmoid", missing.Op)

	err = missingOp(errors.New("file not found"))
	require.False(t, errors.As(err, &missing))
	require.Contains(t, err.Error(), "file not found")
}

func TestRegistered(t *testing.T) {
	require.Contains(t, classifier.Backends(), BackendName)
}

// Package onnx provides a classifier backend running a quantized model with
// ONNX Runtime.
package onnx

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/robotalks/sbd.go/pkg/classifier"
)

// BackendName is the name the backend is registered with.
const BackendName = "onnx"

func init() {
	classifier.Register(BackendName, func(opts classifier.Options) (classifier.Classifier, error) {
		return New(opts)
	})
}

// ortEnv manages the process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// Classifier runs a single-input, single-output model. Input and output
// tensors are allocated once and reused by every Classify call.
type Classifier struct {
	session    *ort.AdvancedSession
	input      ort.Value
	output     ort.Value
	setInput   func([]int8)
	readOutput func() int8
	featureLen int
	zeroPoint  int8
}

// New loads the model and allocates its tensors.
func New(opts classifier.Options) (*Classifier, error) {
	libPath := opts.LibraryPath
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(opts.ModelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: model has %d inputs, expect 1", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	in, out := inputs[0], outputs[0]
	inShape, outShape := concreteShape(in.Dimensions), concreteShape(out.Dimensions)
	if n := inShape.FlattenedSize(); n != int64(opts.FeatureLen) {
		return nil, fmt.Errorf("onnx: input %q has %d elements, expect %d", in.Name, n, opts.FeatureLen)
	}
	if n := outShape.FlattenedSize(); n != 1 {
		return nil, fmt.Errorf("onnx: output %q has %d elements, expect 1", out.Name, n)
	}
	if err = checkWorkspace(in.DataType, out.DataType, opts.FeatureLen, opts.WorkspaceSize); err != nil {
		return nil, err
	}

	c := &Classifier{featureLen: opts.FeatureLen, zeroPoint: opts.ZeroPoint}
	if err = c.allocInput(in.DataType, inShape); err == nil {
		err = c.allocOutput(out.DataType, outShape, opts.OutputScale)
	}
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("onnx: %w", err)
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("onnx: create session options: %w", err)
	}
	defer sessOpts.Destroy()
	sessOpts.SetIntraOpNumThreads(1)
	sessOpts.SetInterOpNumThreads(1)

	c.session, err = ort.NewAdvancedSession(opts.ModelPath,
		[]string{in.Name}, []string{out.Name},
		[]ort.Value{c.input}, []ort.Value{c.output}, sessOpts)
	if err != nil {
		c.Close()
		return nil, missingOp(err)
	}
	glog.Infof("onnx: model %s loaded, input %q %v, output %q %v",
		opts.ModelPath, in.Name, inShape, out.Name, outShape)
	return c, nil
}

func (c *Classifier) allocInput(dt ort.TensorElementDataType, shape ort.Shape) error {
	switch dt {
	case ort.TensorElementDataTypeInt8:
		t, err := ort.NewEmptyTensor[int8](shape)
		if err != nil {
			return err
		}
		c.input, c.setInput = t, func(features []int8) {
			copy(t.GetData(), features)
		}
	case ort.TensorElementDataTypeFloat:
		t, err := ort.NewEmptyTensor[float32](shape)
		if err != nil {
			return err
		}
		c.input, c.setInput = t, func(features []int8) {
			data := t.GetData()
			for i, v := range features {
				data[i] = float32(v)
			}
		}
	}
	return nil
}

func (c *Classifier) allocOutput(dt ort.TensorElementDataType, shape ort.Shape, scale float32) error {
	switch dt {
	case ort.TensorElementDataTypeInt8:
		t, err := ort.NewEmptyTensor[int8](shape)
		if err != nil {
			return err
		}
		c.output, c.readOutput = t, func() int8 {
			return t.GetData()[0]
		}
	case ort.TensorElementDataTypeFloat:
		t, err := ort.NewEmptyTensor[float32](shape)
		if err != nil {
			return err
		}
		zp := c.zeroPoint
		c.output, c.readOutput = t, func() int8 {
			return classifier.Quantize(t.GetData()[0], scale, zp)
		}
	}
	return nil
}

// Classify implements classifier.Classifier.
func (c *Classifier) Classify(features []int8) (classifier.Result, error) {
	if len(features) != c.featureLen {
		return classifier.Result{}, classifier.ErrInputLength
	}
	c.setInput(features)
	if err := c.session.Run(); err != nil {
		return classifier.Result{}, fmt.Errorf("onnx: invoke failed: %w", err)
	}
	return classifier.Result{Score: c.readOutput(), Threshold: c.zeroPoint}, nil
}

// Close implements io.Closer.
func (c *Classifier) Close() error {
	var errs *multierror.Error
	if c.session != nil {
		errs = multierror.Append(errs, c.session.Destroy())
	}
	for _, v := range []ort.Value{c.input, c.output} {
		if v != nil {
			errs = multierror.Append(errs, v.Destroy())
		}
	}
	return errs.ErrorOrNil()
}

// concreteShape replaces dynamic dimensions with 1 (single window batch).
func concreteShape(dims ort.Shape) ort.Shape {
	shape := make(ort.Shape, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		shape[i] = d
	}
	return shape
}

func elementSize(dt ort.TensorElementDataType) (int, error) {
	switch dt {
	case ort.TensorElementDataTypeInt8:
		return 1, nil
	case ort.TensorElementDataTypeFloat:
		return 4, nil
	}
	return 0, fmt.Errorf("unsupported element type %v", dt)
}

// checkWorkspace verifies the input and output tensors fit in budget
// bytes. A budget of 0 is unlimited.
func checkWorkspace(inType, outType ort.TensorElementDataType, featureLen, budget int) error {
	inSize, err := elementSize(inType)
	if err != nil {
		return fmt.Errorf("onnx: input: %w", err)
	}
	outSize, err := elementSize(outType)
	if err != nil {
		return fmt.Errorf("onnx: output: %w", err)
	}
	if budget > 0 && inSize*featureLen+outSize > budget {
		return classifier.ErrWorkspaceExhausted
	}
	return nil
}

var notImplementedRe = regexp.MustCompile(`Could not find an implementation for (\w+)\(`)

// missingOp translates ONNX Runtime's NOT_IMPLEMENTED session error into a
// MissingOpError naming the operator.
func missingOp(err error) error {
	if m := notImplementedRe.FindStringSubmatch(err.Error()); m != nil {
		return &classifier.MissingOpError{Op: m[1]}
	}
	return fmt.Errorf("onnx: create session: %w", err)
}

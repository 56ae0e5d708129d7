// Package classifier defines the boundary to the numeric inference engine.
package classifier

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Result is the quantized output of one classification.
type Result struct {
	// Score is the quantized classifier output.
	Score int8
	// Threshold is the quantized value Score must exceed, the output
	// zero-point.
	Threshold int8
}

// Classifier consumes an encoded window and produces a quantized result.
// A Classify error is scoped to the single request.
type Classifier interface {
	Classify(features []int8) (Result, error)
}

// ClassifyFunc is the func form of Classifier.
type ClassifyFunc func([]int8) (Result, error)

// Classify implements Classifier.
func (f ClassifyFunc) Classify(features []int8) (Result, error) {
	return f(features)
}

// DefaultWorkspaceSize is the memory budget of a classifier's tensors.
const DefaultWorkspaceSize = 40 * 1024

// Options are passed to backend factories.
type Options struct {
	// FeatureLen is the length of the encoded input.
	FeatureLen int
	// WorkspaceSize bounds the memory a backend may allocate for tensors.
	WorkspaceSize int
	// ModelPath locates the model file, if the backend needs one.
	ModelPath string
	// LibraryPath locates the inference runtime shared library.
	LibraryPath string
	// ZeroPoint is the quantization zero-point of the output.
	ZeroPoint int8
	// OutputScale quantizes float outputs: q = round(v/OutputScale) + ZeroPoint.
	OutputScale float32
}

// Factory constructs a Classifier. Construction failures are fatal to the
// caller.
type Factory func(Options) (Classifier, error)

var (
	factories     = make(map[string]Factory)
	factoriesLock sync.RWMutex
)

// Register makes a backend available by name. It is intended to be called
// from init funcs of backend packages.
func Register(name string, factory Factory) {
	factoriesLock.Lock()
	defer factoriesLock.Unlock()
	if _, exist := factories[name]; exist {
		panic("classifier backend registered twice: " + name)
	}
	factories[name] = factory
}

// Backends lists registered backend names.
func Backends() []string {
	factoriesLock.RLock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	factoriesLock.RUnlock()
	sort.Strings(names)
	return names
}

// New constructs a Classifier using the named backend.
func New(name string, opts Options) (Classifier, error) {
	factoriesLock.RLock()
	factory := factories[name]
	factoriesLock.RUnlock()
	if factory == nil {
		return nil, &ErrUnknownBackend{Name: name}
	}
	c, err := factory(opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the classifier if it holds resources.
func Close(c Classifier) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Quantize converts a real-valued output to the int8 domain with
// saturation.
func Quantize(v, scale float32, zeroPoint int8) int8 {
	if scale == 0 {
		scale = 1
	}
	q := v/scale + float32(zeroPoint)
	switch {
	case q >= 127:
		return 127
	case q <= -128:
		return -128
	case q >= 0:
		return int8(q + 0.5)
	default:
		return int8(q - 0.5)
	}
}

// ErrUnknownBackend indicates no backend is registered with the name.
type ErrUnknownBackend struct {
	Name string
}

// Error implements error.
func (e *ErrUnknownBackend) Error() string {
	return fmt.Sprintf("unknown classifier backend: %q", e.Name)
}

package reduction

import "github.com/pkg/errors"

var (
	// ErrInvalidConfiguration is returned (wrapped) for unknown or disallowed reduction modes,
	// and for malformed loss configurations.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUndefinedReduction is returned (wrapped) when a Mean or BatchMean is requested over zero
	// elements, or a BatchMean over a scalar.
	ErrUndefinedReduction = errors.New("undefined reduction")

	// ErrShapeMismatch is returned (wrapped) by kernels when the shapes of their inputs disagree:
	// e.g. a class weight whose length is not the number of classes.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// InvalidConfigurationf returns an error wrapping ErrInvalidConfiguration with the formatted message.
func InvalidConfigurationf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}

// ShapeMismatchf returns an error wrapping ErrShapeMismatch with the formatted message.
func ShapeMismatchf(format string, args ...any) error {
	return errors.Wrapf(ErrShapeMismatch, format, args...)
}

func undefinedf(format string, args ...any) error {
	return errors.Wrapf(ErrUndefinedReduction, format, args...)
}

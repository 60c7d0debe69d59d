package canvas

// RenderingIntent selects how out-of-gamut colours are mapped on
// conversion.
type RenderingIntent int

const (
	IntentPerceptual RenderingIntent = iota
	IntentRelativeColorimetric
	IntentSaturation
	IntentAbsoluteColorimetric
)

func (i RenderingIntent) String() string {
	switch i {
	case IntentPerceptual:
		return "perceptual"
	case IntentRelativeColorimetric:
		return "relative-colorimetric"
	case IntentSaturation:
		return "saturation"
	case IntentAbsoluteColorimetric:
		return "absolute-colorimetric"
	}
	return "unknown"
}

// ConversionFlags tune a colour conversion.
type ConversionFlags uint

const (
	BlackpointCompensation ConversionFlags = 1 << iota
	NoOptimization
	NoWhiteOnWhiteFixup
)

// InternalRenderingIntent is the intent used for conversions that are not
// user-configured.
func InternalRenderingIntent() RenderingIntent { return IntentPerceptual }

// InternalConversionFlags are the flags used alongside
// InternalRenderingIntent.
func InternalConversionFlags() ConversionFlags { return BlackpointCompensation }

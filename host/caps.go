package host

import (
	"golang.org/x/sys/cpu"
)

// Capabilities are the host features the code generator may rely on.
// They are resolved once and passed to every builder.
type Capabilities struct {
	SSE41   bool
	AVX     bool
	AVX2    bool
	AVX512F bool
}

// BASELINE is plain SSE2, which every x86-64 host has.
var BASELINE = Capabilities{}

// Detect reads the features of the running host.
func Detect() Capabilities {
	return Capabilities{
		SSE41:   cpu.X86.HasSSE41,
		AVX:     cpu.X86.HasAVX,
		AVX2:    cpu.X86.HasAVX2,
		AVX512F: cpu.X86.HasAVX512F,
	}
}

// Resolve returns the detected features, or the baseline when portable
// code is requested.
func Resolve(portable bool) Capabilities {
	if portable {
		return BASELINE
	}
	return Detect()
}

func (caps Capabilities) String() (text string) {
	text = "sse2"
	for _, feature := range []struct {
		has  bool
		name string
	}{
		{caps.SSE41, "sse4.1"},
		{caps.AVX, "avx"},
		{caps.AVX2, "avx2"},
		{caps.AVX512F, "avx512f"},
	} {
		if feature.has {
			text += "," + feature.name
		}
	}
	return
}

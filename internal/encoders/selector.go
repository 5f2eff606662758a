// Package encoders selects ffmpeg video encoder flags for the configured
// hardware vendor or the software fallback.
package encoders

import (
	"strconv"
	"strings"
)

// Vendor identifies a GPU vendor with a hardware H.264 encoder.
type Vendor string

// Supported vendors.
const (
	VendorNVIDIA Vendor = "nvidia"
	VendorAMD    Vendor = "amd"
	VendorIntel  Vendor = "intel"
)

// Software encoder defaults.
const (
	SoftwareEncoder = "libx264"
	SoftwarePreset  = "superfast"
	RawEncoder      = "rawvideo"
)

// profile turns a quality value into encoder flags for one vendor.
type profile func(quality string) []string

var profiles = map[Vendor]profile{
	VendorNVIDIA: func(q string) []string {
		return []string{"-c:v", "h264_nvenc", "-preset", "p7", "-qp", q}
	},
	VendorAMD: func(q string) []string {
		return []string{"-c:v", "h264_amf", "-qp_i", q, "-qp_b", q, "-qp_p", q, "-quality", "quality"}
	},
	VendorIntel: func(q string) []string {
		return []string{"-c:v", "h264_qsv", "-global_quality", q, "-preset", "veryslow"}
	},
}

// ParseVendor matches a vendor name case-insensitively.
func ParseVendor(name string) (Vendor, bool) {
	v := Vendor(strings.ToLower(strings.TrimSpace(name)))
	_, ok := profiles[v]
	return v, ok
}

// Request describes what the video stage needs to encode.
type Request struct {
	GPU     bool
	GPUType string
	Quality int
	// Stdout selects an uncompressed stream for a downstream consumer.
	Stdout bool
}

// VideoArgs returns the video encoder flags for r.
//
// An unrecognised GPU vendor yields no flags at all, leaving the choice to the
// container's default encoder. Settings validation rejects such vendors up
// front, so this only happens for callers that skip validation.
func VideoArgs(r Request) []string {
	quality := strconv.Itoa(r.Quality)

	if r.GPU {
		v, ok := ParseVendor(r.GPUType)
		if !ok {
			return nil
		}
		return profiles[v](quality)
	}

	if r.Stdout {
		return []string{"-c:v", RawEncoder}
	}
	return []string{"-c:v", SoftwareEncoder, "-preset", SoftwarePreset, "-crf", quality}
}

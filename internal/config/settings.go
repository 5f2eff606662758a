package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/teres/internal/encoders"
)

// Settings is the render settings snapshot. It is loaded once, validated and
// then passed by value; nothing mutates it after Validate succeeds.
type Settings struct {
	Encoding      EncodingSettings      `toml:"encoding"`
	Timescale     TimescaleSettings     `toml:"timescale"`
	Interpolation InterpolationSettings `toml:"interpolation"`
	Blending      BlendingSettings      `toml:"blending"`
	Advanced      AdvancedSettings      `toml:"advanced"`
}

// EncodingSettings controls output quality and container.
type EncodingSettings struct {
	Quality          int    `toml:"quality"`
	Container        string `toml:"container"`
	DetailedFilename bool   `toml:"detailed_filename"`
}

// TimescaleSettings controls playback speed before and after blurring.
type TimescaleSettings struct {
	Input            float64 `toml:"input"`
	Output           float64 `toml:"output"`
	AdjustAudioPitch bool    `toml:"adjust_audio_pitch"`
}

// InterpolationSettings controls frame interpolation.
type InterpolationSettings struct {
	Enabled bool `toml:"enabled"`
	FPS     int  `toml:"fps"`
}

// BlendingSettings controls frame blending.
type BlendingSettings struct {
	Enabled   bool    `toml:"enabled"`
	OutputFPS int     `toml:"output_fps"`
	Amount    float64 `toml:"amount"`
}

// AdvancedSettings groups rarely changed options.
type AdvancedSettings struct {
	Encoding      AdvancedEncodingSettings      `toml:"encoding"`
	Interpolation AdvancedInterpolationSettings `toml:"interpolation"`
}

// AdvancedEncodingSettings selects hardware encoding or a custom filter set.
type AdvancedEncodingSettings struct {
	GPU     bool   `toml:"gpu"`
	GPUType string `toml:"gpu_type"`
	// CustomFFmpegFilters replaces every derived encoder flag when non-empty.
	CustomFFmpegFilters string `toml:"custom_ffmpeg_filters"`
}

// AdvancedInterpolationSettings selects the interpolation program.
type AdvancedInterpolationSettings struct {
	Program string `toml:"program"`
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		Encoding: EncodingSettings{
			Quality:   20,
			Container: "mp4",
		},
		Timescale: TimescaleSettings{
			Input:  1.0,
			Output: 1.0,
		},
		Interpolation: InterpolationSettings{
			Enabled: true,
			FPS:     480,
		},
		Blending: BlendingSettings{
			Enabled:   true,
			OutputFPS: 60,
			Amount:    1.0,
		},
		Advanced: AdvancedSettings{
			Encoding: AdvancedEncodingSettings{
				GPUType: string(encoders.VendorNVIDIA),
			},
			Interpolation: AdvancedInterpolationSettings{
				Program: "svp",
			},
		},
	}
}

// HasCustomFilters reports whether the custom filter override is set.
func (s Settings) HasCustomFilters() bool {
	return s.Advanced.Encoding.CustomFFmpegFilters != ""
}

// Validate checks the invariants the command builder relies on.
func (s Settings) Validate() error {
	floats := map[string]float64{
		"timescale.input":  s.Timescale.Input,
		"timescale.output": s.Timescale.Output,
		"blending.amount":  s.Blending.Amount,
	}
	var errs []error
	for name, v := range floats {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be finite, got %v", name, v))
		}
	}
	if s.Timescale.Input <= 0 {
		errs = append(errs, fmt.Errorf("timescale.input must be positive, got %v", s.Timescale.Input))
	}
	if s.Timescale.Output <= 0 {
		errs = append(errs, fmt.Errorf("timescale.output must be positive, got %v", s.Timescale.Output))
	}
	if s.Encoding.Quality < 0 || s.Encoding.Quality > 51 {
		errs = append(errs, fmt.Errorf("encoding.quality must be between 0 and 51, got %d", s.Encoding.Quality))
	}
	if s.Encoding.Container == "" {
		errs = append(errs, errors.New("encoding.container must not be empty"))
	}
	if s.Advanced.Encoding.GPU && !s.HasCustomFilters() {
		if _, ok := encoders.ParseVendor(s.Advanced.Encoding.GPUType); !ok {
			errs = append(errs, fmt.Errorf("advanced.encoding.gpu_type %q is not one of nvidia, amd, intel",
				s.Advanced.Encoding.GPUType))
		}
	}
	return errors.Join(errs...)
}

// LoadSettings reads render settings from a TOML file on top of the defaults.
// A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return settings, nil
}

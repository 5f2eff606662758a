package ffmpeg

// Params holds everything needed to build the transcoder argument vector.
type Params struct {
	// Inputs
	VideoInput  string // "-" reads the raw stream piped from the frame server
	AudioSource string // original media file, mapped for its audio track only

	// Filters
	AudioFilters string // asetrate=48000*2,atempo=1.5

	// Encoding. CustomArgs, when set, replaces VideoArgs, the audio codec
	// flags and faststart entirely.
	VideoArgs    []string // -c:v libx264 -preset superfast -crf 20
	AudioCodec   string   // aac
	AudioBitrate string   // 320k
	FastStart    bool
	CustomArgs   []string

	// Output
	Format string // forced muxer, e.g. nut when streaming to stdout
	Output string // file path or "-"
}

// Audio defaults applied to every non-custom render.
const (
	DefaultAudioCodec   = "aac"
	DefaultAudioBitrate = "320k"
	// AudioSampleRate is the nominal rate asetrate scales from.
	AudioSampleRate = 48000
)

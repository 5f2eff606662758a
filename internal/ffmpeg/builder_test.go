package ffmpeg

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

func baseParams() *Params {
	return &Params{
		VideoInput:   "-",
		AudioSource:  "/videos/in.mp4",
		VideoArgs:    []string{"-c:v", "libx264", "-preset", "superfast", "-crf", "20"},
		AudioCodec:   DefaultAudioCodec,
		AudioBitrate: DefaultAudioBitrate,
		FastStart:    true,
		Output:       "/videos/in_blur.mp4",
	}
}

func TestBuildArgs(t *testing.T) {
	got := BuildArgs(baseParams())
	want := []string{
		"-loglevel", "level+error", "-hide_banner", "-nostats",
		"-i", "-", "-i", "/videos/in.mp4",
		"-map", "0:v", "-map", "1:a?",
		"-c:v", "libx264", "-preset", "superfast", "-crf", "20",
		"-c:a", "aac", "-b:a", "320k",
		"-movflags", "+faststart",
		"/videos/in_blur.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildArgs() =\n%v\nwant\n%v", got, want)
	}
}

func TestBuildArgsAudioFilters(t *testing.T) {
	p := baseParams()
	p.AudioFilters = "atempo=2"
	got := BuildArgs(p)

	i := slices.Index(got, "-af")
	if i == -1 || got[i+1] != "atempo=2" {
		t.Fatalf("expected -af atempo=2 in %v", got)
	}
	if j := slices.Index(got, "-c:v"); j < i {
		t.Errorf("audio filters should come before encoder flags: %v", got)
	}
}

func TestBuildArgsCustomArgsReplaceEncoding(t *testing.T) {
	p := baseParams()
	p.CustomArgs = []string{"-c:v", "libx265", "-crf", "28"}
	got := strings.Join(BuildArgs(p), " ")

	if !strings.HasSuffix(got, "-map 1:a? -c:v libx265 -crf 28 /videos/in_blur.mp4") {
		t.Errorf("custom args not applied verbatim: %s", got)
	}
	for _, unwanted := range []string{"libx264", "-c:a", "+faststart"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("custom args should suppress %q: %s", unwanted, got)
		}
	}
}

func TestBuildArgsStreamFormat(t *testing.T) {
	p := baseParams()
	p.Format = "nut"
	p.Output = "-"
	got := BuildArgs(p)

	if tail := got[len(got)-3:]; !reflect.DeepEqual(tail, []string{"-f", "nut", "-"}) {
		t.Errorf("tail = %v, want [-f nut -]", tail)
	}
}

func TestAudioFilterChain(t *testing.T) {
	tests := []struct {
		name        string
		input       float64
		output      float64
		adjustPitch bool
		want        string
	}{
		{"identity", 1.0, 1.0, false, ""},
		{"identity with pitch flag", 1.0, 1.0, true, ""},
		{"output tempo", 1.0, 2.0, false, "atempo=2"},
		{"input slowdown", 0.5, 1.0, false, "asetrate=48000*2"},
		{"output pitch", 1.0, 1.5, true, "asetrate=48000*1.5"},
		{"both", 0.25, 0.5, false, "asetrate=48000*4,atempo=0.5"},
		{"both pitch", 2.0, 3.0, true, "asetrate=48000*0.5,asetrate=48000*3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AudioFilterChain(tt.input, tt.output, tt.adjustPitch); got != tt.want {
				t.Errorf("AudioFilterChain(%v, %v, %v) = %q, want %q",
					tt.input, tt.output, tt.adjustPitch, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		2.0:     "2",
		0.5:     "0.5",
		60:      "60",
		1.0 / 3: "0.3333333333333333",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"-c:v libx265 -crf 28", []string{"-c:v", "libx265", "-crf", "28"}, false},
		{`-vf "scale=1280:-2, fps=60"`, []string{"-vf", "scale=1280:-2, fps=60"}, false},
		{`-metadata title='my clip'`, []string{"-metadata", "title=my clip"}, false},
		{`a\ b  c`, []string{"a b", "c"}, false},
		{`-x ''`, []string{"-x", ""}, false},
		{`-x ""`, []string{"-x", ""}, false},
		{`-metadata "comment=say \"hi\""`, []string{"-metadata", `comment=say "hi"`}, false},
		{"   ", nil, false},
		{`-vf "unclosed`, nil, true},
		{`-crf 28; rm -rf /`, nil, true},
		{`-f nut - | ffplay -`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SplitArgs(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

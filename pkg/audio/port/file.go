// ABOUTME: File-backed port implementation
// ABOUTME: Records output ports to WAV and plays WAV or MP3 files as input ports
package port

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/hajimehoshi/go-mp3"

	"github.com/Resonate-Protocol/portmix/pkg/audio"
)

// FileConfig configures a File platform
type FileConfig struct {
	// OutputPath is the WAV file written by output ports
	OutputPath string

	// InputPath is the .wav or .mp3 file replayed by input ports
	InputPath string

	// Realtime paces every Output/Input call at the stream rate
	Realtime bool

	// Loop restarts input at end of file; otherwise input turns to silence
	Loop bool
}

// File is a Platform whose ports are files. It stands in for hardware on
// hosts without audio devices and for recording engine output.
type File struct {
	logger *slog.Logger
	cfg    FileConfig
}

// NewFile creates a file platform
func NewFile(cfg FileConfig) *File {
	return &File{
		logger: slog.Default().With("file platform uuid", uuid.New()),
		cfg:    cfg,
	}
}

// OpenOutputPort creates (or truncates) the WAV file at OutputPath
func (p *File) OpenOutputPort(kind OutputKind, cfg OutputConfig) (OutputPort, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if p.cfg.OutputPath == "" {
		return nil, fmt.Errorf("%w: no output path configured", ErrUnsupported)
	}

	f, err := os.Create(p.cfg.OutputPath)
	if err != nil {
		p.logger.Error("could not create audio file", "audioFile", p.cfg.OutputPath, "err", err)
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	out := &wavOutput{
		logger:     p.logger.With("output kind", kind),
		fileHandle: f,
		encoder:    wav.NewEncoder(f, cfg.Frequency, 16, cfg.Mode.Channels(), 1),
		cfg:        cfg,
		samples:    make([]int16, cfg.UpdateSize*cfg.Mode.Channels()),
	}
	if p.cfg.Realtime {
		out.pacer = newPacer(cfg.UpdateSize, cfg.Frequency)
	}

	out.logger.Debug("opened wav output port",
		"audioFile", p.cfg.OutputPath, "sampleRate", cfg.Frequency, "channels", cfg.Mode.Channels())
	return out, nil
}

// OpenInputPort decodes InputPath fully and replays it as S16 mono.
// The file's sample rate must equal the requested frequency.
func (p *File) OpenInputPort(kind InputKind, cfg InputConfig) (InputPort, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if p.cfg.InputPath == "" {
		return nil, fmt.Errorf("%w: no input path configured", ErrUnsupported)
	}

	var (
		samples    []int16
		sampleRate int
		err        error
	)
	switch strings.ToLower(filepath.Ext(p.cfg.InputPath)) {
	case ".wav":
		samples, sampleRate, err = decodeWAV(p.cfg.InputPath)
	case ".mp3":
		samples, sampleRate, err = decodeMP3(p.cfg.InputPath)
	default:
		err = fmt.Errorf("%w: input file type %q", ErrUnsupported, filepath.Ext(p.cfg.InputPath))
	}
	if err != nil {
		p.logger.Error("could not decode audio file", "audioFile", p.cfg.InputPath, "err", err)
		return nil, err
	}

	if sampleRate != cfg.Frequency {
		return nil, fmt.Errorf("%w: file is %dHz, port requested %dHz",
			ErrUnsupported, sampleRate, cfg.Frequency)
	}

	in := &fileInput{
		logger:  p.logger.With("input kind", kind),
		cfg:     cfg,
		samples: samples,
		loop:    p.cfg.Loop,
	}
	if p.cfg.Realtime {
		in.pacer = newPacer(cfg.UpdateSize, cfg.Frequency)
	}

	in.logger.Debug("loaded audio file",
		"audioFile", p.cfg.InputPath, "sampleRate", sampleRate, "frames", len(samples))
	return in, nil
}

type wavOutput struct {
	logger     *slog.Logger
	fileHandle *os.File
	encoder    *wav.Encoder
	pacer      *pacer
	cfg        OutputConfig
	samples    []int16
	released   bool
}

// SetConfig accepts a new update size; a WAV stream cannot change its
// rate or channel count mid-file.
func (o *wavOutput) SetConfig(cfg OutputConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if o.released {
		return ErrReleased
	}
	if cfg.Frequency != o.cfg.Frequency || cfg.Mode != o.cfg.Mode {
		return fmt.Errorf("%w: wav stream is %dHz %s", ErrUnsupported, o.cfg.Frequency, o.cfg.Mode)
	}
	if o.pacer != nil {
		o.pacer = newPacer(cfg.UpdateSize, cfg.Frequency)
	}
	o.cfg = cfg
	o.samples = make([]int16, cfg.UpdateSize*cfg.Mode.Channels())
	return nil
}

func (o *wavOutput) Output(buf []byte) error {
	if o.released {
		return ErrReleased
	}
	if len(buf) != o.cfg.BufferSize() {
		return fmt.Errorf("output buffer is %d bytes, port expects %d", len(buf), o.cfg.BufferSize())
	}

	n := audio.Int16s(o.samples, buf)
	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			SampleRate:  o.cfg.Frequency,
			NumChannels: o.cfg.Mode.Channels(),
		},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}
	for i, s := range o.samples[:n] {
		intBuf.Data[i] = int(s)
	}

	if err := o.encoder.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write wav frames: %w", err)
	}
	if o.pacer != nil {
		o.pacer.wait()
	}
	return nil
}

// Release finalizes the WAV header and closes the file
func (o *wavOutput) Release() error {
	if o.released {
		return nil
	}
	o.released = true

	var errs []error
	if err := o.encoder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to finalize wav: %w", err))
	}
	if err := o.fileHandle.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close wav file: %w", err))
	}
	return errors.Join(errs...)
}

type fileInput struct {
	logger   *slog.Logger
	cfg      InputConfig
	pacer    *pacer
	samples  []int16
	pos      int
	loop     bool
	released bool
}

func (in *fileInput) Input(buf []byte) error {
	if in.released {
		return ErrReleased
	}
	if len(buf) != in.cfg.BufferSize() {
		return fmt.Errorf("input buffer is %d bytes, port expects %d", len(buf), in.cfg.BufferSize())
	}

	out := make([]int16, in.cfg.UpdateSize)
	filled := 0
	for filled < len(out) {
		if in.pos >= len(in.samples) {
			if !in.loop || len(in.samples) == 0 {
				break
			}
			in.pos = 0
		}
		n := copy(out[filled:], in.samples[in.pos:])
		in.pos += n
		filled += n
	}
	audio.PutInt16s(buf, out)

	if in.pacer != nil {
		in.pacer.wait()
	}
	return nil
}

func (in *fileInput) Release() error {
	in.released = true
	in.samples = nil
	return nil
}

// decodeWAV returns the file as S16 mono and its sample rate
func decodeWAV(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode wav: %w", err)
	}

	interleaved := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = toInt16(v, buf.SourceBitDepth)
	}

	channels := buf.Format.NumChannels
	mono := make([]int16, len(interleaved)/max(channels, 1))
	audio.DownmixToMono(mono, interleaved, channels)
	return mono, buf.Format.SampleRate, nil
}

// decodeMP3 returns the file as S16 mono and its sample rate.
// go-mp3 always produces 16-bit stereo.
func decodeMP3(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open mp3 file: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 decode error: %w", err)
	}

	interleaved := make([]int16, len(data)/2)
	audio.Int16s(interleaved, data)

	mono := make([]int16, len(interleaved)/2)
	audio.DownmixToMono(mono, interleaved, 2)
	return mono, decoder.SampleRate(), nil
}

func toInt16(v, bitDepth int) int16 {
	switch bitDepth {
	case 8:
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	}
	return int16(v)
}

// Command tunecheck renders every string type at a list of frequencies,
// estimates the pitch each one actually sounds at and prints the error in
// cents.
//
// Usage:
//
//	tunecheck [flags]
//
// Examples:
//
//	tunecheck
//	tunecheck -types split -freqs 100,200,400,800 -position 0.25
//	tunecheck -wav out -reverb luff
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/node"
	"github.com/cwbudde/algo-waveguide/dsp/signal"
	"github.com/cwbudde/algo-waveguide/measure/pitch"
)

type settings struct {
	proc      core.ProcessorConfig
	seconds   float64
	types     []string
	freqs     []float64
	position  float64
	feedback  float64
	damping   float64
	bowForce  float64
	bowVel    float64
	reverb    string
	wavDir    string
	seed      int64
	exciteAmp float64
}

type row struct {
	typ      string
	target   float64
	measured float64
	cents    float64
	peakDB   float64
	err      error
}

var errHalted = errors.New("voice halted on a non-finite sample")

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 256, "processing block size in frames")
	seconds := flag.Float64("seconds", 1, "render length per voice in seconds")
	types := flag.String("types", "basic,bowed,split,bandpass", "comma separated string types")
	freqs := flag.String("freqs", "110,220,440,880,1760", "comma separated target frequencies in Hz")
	position := flag.Float64("position", 0.5, "excitation position in [0,1]")
	feedback := flag.Float64("feedback", 0.99, "loop feedback")
	damping := flag.Float64("damping", 8000, "loop lowpass cutoff in Hz")
	bowForce := flag.Float64("bow-force", 0.5, "bow force for bowed strings")
	bowVel := flag.Float64("bow-velocity", 0, "bow velocity for bowed strings")
	reverb := flag.String("reverb", "", "send WAV output through a reverb (galactic, luff)")
	wavDir := flag.String("wav", "", "directory to write one 16-bit WAV per voice")
	seed := flag.Int64("seed", 1, "reverb construction seed")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tunecheck [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders string voices and reports their tuning error in cents.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	freqList, err := parseFreqs(*freqs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s := settings{
		proc:      core.ApplyProcessorOptions(core.WithSampleRate(*rate), core.WithBlockSize(*block)),
		seconds:   *seconds,
		types:     parseNames(*types),
		freqs:     freqList,
		position:  *position,
		feedback:  *feedback,
		damping:   *damping,
		bowForce:  *bowForce,
		bowVel:    *bowVel,
		reverb:    strings.ToLower(strings.TrimSpace(*reverb)),
		wavDir:    *wavDir,
		seed:      *seed,
		exciteAmp: 0.4,
	}

	rows, err := run(node.DefaultRegistry(), s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printRows(os.Stdout, rows); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write output: %v\n", err)
		os.Exit(1)
	}
}

func parseNames(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}

func parseFreqs(list string) ([]float64, error) {
	var freqs []float64
	for _, field := range parseNames(list) {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency %q: %w", field, err)
		}

		if f <= 0 {
			return nil, fmt.Errorf("frequency must be > 0: %v", f)
		}

		freqs = append(freqs, f)
	}

	if len(freqs) == 0 {
		return nil, errors.New("no frequencies given")
	}

	return freqs, nil
}

func run(reg *node.Registry, s settings) ([]row, error) {
	frames := s.proc.Frames(s.seconds)
	if frames < 4 {
		return nil, fmt.Errorf("render length too short: %d frames", frames)
	}

	if s.wavDir != "" {
		if err := os.MkdirAll(s.wavDir, 0o755); err != nil {
			return nil, err
		}
	}

	var rows []row
	for _, typ := range s.types {
		for _, freq := range s.freqs {
			r := row{typ: typ, target: freq}

			sig, status, err := renderVoice(reg, typ, freq, frames, s)
			if err != nil {
				return nil, err
			}

			r.peakDB = core.LinearToDB(signal.Peak(sig))

			if status == core.StatusFree {
				r.err = errHalted
			} else if res, err := pitch.Estimate(sig, s.proc.SampleRate, pitch.WithRange(freq/2.5, freq*2.5)); err != nil {
				r.err = err
			} else {
				r.measured = res.Frequency
				r.cents = res.Cents(freq)
			}

			rows = append(rows, r)

			if s.wavDir == "" {
				continue
			}

			if s.reverb != "" {
				sig, err = applyReverb(reg, sig, s)
				if err != nil {
					return nil, err
				}
			}

			path := filepath.Join(s.wavDir, fmt.Sprintf("%s-%g.wav", typ, freq))
			if err := writeWAV(path, sig, int(s.proc.SampleRate)); err != nil {
				return nil, err
			}
		}
	}

	return rows, nil
}

// renderVoice excites a string with a half-sine burst at 1.5 times its
// frequency and returns the dry output and the final render status.
func renderVoice(reg *node.Registry, typ string, freq float64, frames int, s settings) ([]float64, core.Status, error) {
	entry, ok := reg.Lookup(typ)
	if !ok {
		return nil, core.StatusFree, fmt.Errorf("%w: %q", node.ErrUnknownNode, typ)
	}

	n, err := reg.New(typ, node.Context{SampleRate: s.proc.SampleRate, BlockSize: s.proc.BlockSize})
	if err != nil {
		return nil, core.StatusFree, err
	}

	inputs := make([][]float64, len(entry.Inputs))
	set := func(name string, buf []float64) {
		if i := entry.Input(name); i >= 0 {
			inputs[i] = buf
		}
	}

	exciter, err := renderExciter(reg, freq*1.5, frames, s)
	if err != nil {
		return nil, core.StatusFree, err
	}

	set("exciter", exciter)
	set("freq", constant(freq, frames))
	set("position", constant(s.position, frames))
	set("feedback", constant(s.feedback, frames))
	set("damping", constant(s.damping, frames))
	set("bow_force", constant(s.bowForce, frames))
	set("bow_velocity", constant(s.bowVel, frames))

	out := [][]float64{make([]float64, frames)}
	status, err := node.Render(n, inputs, out, s.proc.SampleRate, s.proc.BlockSize)
	if err != nil {
		return nil, core.StatusFree, err
	}

	return out[0], status, nil
}

// renderExciter renders one half-sine burst at freq from frame 0.
func renderExciter(reg *node.Registry, freq float64, frames int, s settings) ([]float64, error) {
	n, err := reg.New(node.TypeHalfSine, node.Context{SampleRate: s.proc.SampleRate, BlockSize: s.proc.BlockSize})
	if err != nil {
		return nil, err
	}

	inputs := make([][]float64, len(signal.HalfSineInputs()))
	inputs[signal.HalfSineInFreq] = constant(freq, frames)
	inputs[signal.HalfSineInAmp] = constant(s.exciteAmp, frames)
	inputs[signal.HalfSineInRestart] = make([]float64, frames)
	inputs[signal.HalfSineInRestart][0] = 1

	out := [][]float64{make([]float64, frames)}
	if _, err := node.Render(n, inputs, out, s.proc.SampleRate, s.proc.BlockSize); err != nil {
		return nil, err
	}

	return out[0], nil
}

// applyReverb runs sig through the reverb named in s and returns the first
// output channel.
func applyReverb(reg *node.Registry, sig []float64, s settings) ([]float64, error) {
	entry, ok := reg.Lookup(s.reverb)
	if !ok {
		return nil, fmt.Errorf("%w: %q", node.ErrUnknownNode, s.reverb)
	}

	n, err := reg.New(s.reverb, node.Context{
		SampleRate: s.proc.SampleRate,
		BlockSize:  s.proc.BlockSize,
		Params:     node.Params{Num: map[string]float64{"seed": float64(s.seed)}},
	})
	if err != nil {
		return nil, err
	}

	inputs := make([][]float64, len(entry.Inputs))
	inputs[0] = sig

	outputs := make([][]float64, len(entry.Outputs))
	for i := range outputs {
		outputs[i] = make([]float64, len(sig))
	}

	if _, err := node.Render(n, inputs, outputs, s.proc.SampleRate, s.proc.BlockSize); err != nil {
		return nil, err
	}

	return signal.Normalize(outputs[0], 0.9)
}

func constant(v float64, frames int) []float64 {
	buf := make([]float64, frames)
	core.Fill(buf, v)

	return buf
}

func writeWAV(path string, sig []float64, sampleRate int) error {
	if !core.AllFinite(sig) {
		return fmt.Errorf("write %s: signal is not finite", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(sig)),
		SourceBitDepth: 16,
	}

	for i, x := range sig {
		buf.Data[i] = int(core.Clamp(x, -1, 1) * 32767)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

func printRows(w io.Writer, rows []row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Type\tTarget [Hz]\tMeasured [Hz]\tError [cents]\tPeak [dB]\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(tw, "----\t-----------\t-------------\t-------------\t---------\n"); err != nil {
		return err
	}

	for _, r := range rows {
		var err error
		if r.err != nil {
			_, err = fmt.Fprintf(tw, "%s\t%.2f\t-\t%v\t%.1f\n", r.typ, r.target, r.err, r.peakDB)
		} else {
			_, err = fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%+.1f\t%.1f\n", r.typ, r.target, r.measured, r.cents, r.peakDB)
		}

		if err != nil {
			return err
		}
	}

	return tw.Flush()
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/signalyzer/analyze"
	"github.com/cwbudde/signalyzer/signal"
)

type report struct {
	Signal   signalReport   `json:"signal"`
	Analysis analysisReport `json:"analysis"`
	Stream   *streamReport  `json:"stream,omitempty"`
}

type signalReport struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Law        string             `json:"law"`
	Parameters map[string]float64 `json:"parameters"`
	SampleRate float64            `json:"sample_rate"`
	Duration   float64            `json:"duration"`
	Samples    int                `json:"samples"`
	Engine     string             `json:"engine"`
	Stats      statsReport        `json:"stats"`
}

type statsReport struct {
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	RMS         float64 `json:"rms"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	PeakToPeak  float64 `json:"peak_to_peak"`
	CrestFactor float64 `json:"crest_factor"`
	Skewness    float64 `json:"skewness"`
	Kurtosis    float64 `json:"kurtosis"`
}

type analysisReport struct {
	SessionID     string           `json:"session_id"`
	Window        string           `json:"window"`
	WindowSize    int              `json:"window_size"`
	TransformSize int              `json:"transform_size"`
	Overlap       float64          `json:"overlap"`
	Frames        int              `json:"frames"`
	BinWidth      float64          `json:"bin_width"`
	Fundamental   peakReport       `json:"fundamental"`
	Harmonics     []harmonicReport `json:"harmonics"`
	THDPercent    float64          `json:"thd_percent"`
}

type peakReport struct {
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
}

type harmonicReport struct {
	Order     int     `json:"order"`
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
	LevelDB   float64 `json:"level_db"`
}

type streamReport struct {
	Frames      uint64  `json:"frames"`
	FrameLength int     `json:"frame_length"`
	Buffered    int     `json:"buffered"`
	LastSeq     uint64  `json:"last_seq"`
	CoveredMS   float64 `json:"covered_ms"`
}

func buildReport(sig *signal.SignalData, session *analyze.Session, engineName string, streamInfo *streamReport) report {
	st := signal.ComputeStats(sig.Samples)
	res := session.Result()
	cfg := session.Config

	rep := report{
		Signal: signalReport{
			ID:         sig.ID,
			Name:       sig.Name,
			Law:        sig.Law.Kind().String(),
			Parameters: sig.Law.Params(),
			SampleRate: sig.SampleRate,
			Duration:   sig.Duration,
			Samples:    sig.Len(),
			Engine:     engineName,
			Stats: statsReport{
				Mean:        st.Mean,
				StdDev:      st.StdDev,
				RMS:         st.RMS,
				Min:         st.Min,
				Max:         st.Max,
				PeakToPeak:  st.PeakToPeak,
				CrestFactor: st.CrestFactor,
				Skewness:    st.Skewness,
				Kurtosis:    st.Kurtosis,
			},
		},
		Analysis: analysisReport{
			SessionID:     session.ID,
			Window:        cfg.WindowKind.String(),
			WindowSize:    cfg.WindowSize,
			TransformSize: cfg.TransformSize,
			Overlap:       cfg.Overlap,
			Frames:        res.Frames,
			BinWidth:      res.BinWidth,
			Fundamental: peakReport{
				Frequency: res.Fundamental.Frequency,
				Amplitude: res.Fundamental.Amplitude,
			},
			THDPercent: res.THDPercent,
		},
		Stream: streamInfo,
	}

	if res.Fundamental.Amplitude > 0 {
		for _, h := range res.Harmonics {
			rep.Analysis.Harmonics = append(rep.Analysis.Harmonics, harmonicReport{
				Order:     int(math.Round(h.Frequency / res.Fundamental.Frequency)),
				Frequency: h.Frequency,
				Amplitude: h.Amplitude,
				LevelDB:   signal.RatioTodB(h.Amplitude / res.Fundamental.Amplitude),
			})
		}
	}

	return rep
}

func printJSON(w io.Writer, rep report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func printReport(w io.Writer, rep report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Signal\n------\n")
	fmt.Fprintf(tw, "Name\t%s\n", rep.Signal.Name)
	fmt.Fprintf(tw, "Law\t%s\n", rep.Signal.Law)
	fmt.Fprintf(tw, "Engine\t%s\n", rep.Signal.Engine)
	fmt.Fprintf(tw, "Sample Rate\t%g Hz\n", rep.Signal.SampleRate)
	fmt.Fprintf(tw, "Duration\t%g s\n", rep.Signal.Duration)
	fmt.Fprintf(tw, "Samples\t%d\n", rep.Signal.Samples)

	st := rep.Signal.Stats
	fmt.Fprintf(tw, "\nStatistics\n----------\n")
	fmt.Fprintf(tw, "Mean\t%.6f\n", st.Mean)
	fmt.Fprintf(tw, "Std Dev\t%.6f\n", st.StdDev)
	fmt.Fprintf(tw, "RMS\t%.6f\n", st.RMS)
	fmt.Fprintf(tw, "Min\t%.6f\n", st.Min)
	fmt.Fprintf(tw, "Max\t%.6f\n", st.Max)
	fmt.Fprintf(tw, "Peak-to-Peak\t%.6f\n", st.PeakToPeak)
	fmt.Fprintf(tw, "Crest Factor\t%.6f\n", st.CrestFactor)
	fmt.Fprintf(tw, "Skewness\t%.6f\n", st.Skewness)
	fmt.Fprintf(tw, "Kurtosis\t%.6f\n", st.Kurtosis)

	if s := rep.Stream; s != nil {
		fmt.Fprintf(tw, "\nStreaming\n---------\n")
		fmt.Fprintf(tw, "Frames Written\t%d\n", s.Frames)
		fmt.Fprintf(tw, "Frame Length\t%d\n", s.FrameLength)
		fmt.Fprintf(tw, "Buffered\t%d\n", s.Buffered)
		fmt.Fprintf(tw, "Last Seq\t%d\n", s.LastSeq)
		fmt.Fprintf(tw, "Covered\t%.2f ms\n", s.CoveredMS)
	}

	a := rep.Analysis
	fmt.Fprintf(tw, "\nAnalysis\n--------\n")
	fmt.Fprintf(tw, "Session\t%s\n", a.SessionID)
	fmt.Fprintf(tw, "Window\t%s (%d samples, fft %d, overlap %.2f)\n", a.Window, a.WindowSize, a.TransformSize, a.Overlap)
	fmt.Fprintf(tw, "Frames\t%d\n", a.Frames)
	fmt.Fprintf(tw, "Bin Width\t%.4f Hz\n", a.BinWidth)
	fmt.Fprintf(tw, "Fundamental\t%.2f Hz (amplitude %.4f)\n", a.Fundamental.Frequency, a.Fundamental.Amplitude)
	fmt.Fprintf(tw, "THD\t%.3f %%\n", a.THDPercent)

	if err := tw.Flush(); err != nil {
		return err
	}

	if len(a.Harmonics) == 0 {
		return nil
	}

	ht := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(ht, "\nHarmonics\n---------\n")
	fmt.Fprintf(ht, "#\tFrequency [Hz]\tAmplitude\tLevel [dB]\n")
	fmt.Fprintf(ht, "-\t--------------\t---------\t----------\n")
	for _, h := range a.Harmonics {
		fmt.Fprintf(ht, "%d\t%.2f\t%.4f\t%.2f\n", h.Order, h.Frequency, h.Amplitude, h.LevelDB)
	}

	return ht.Flush()
}

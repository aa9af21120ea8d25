// Package mp4inspect reads the video track timing of an MP4 file.
package mp4inspect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

var (
	// ErrNoVideoTrack is returned when the file has no video track.
	ErrNoVideoTrack = errors.New("mp4inspect: no video track found")
)

// Sample is the timing of one video sample in track timescale units.
type Sample struct {
	DecodeTime uint64
	Dur        uint32
	Size       uint32
}

// Report summarizes the video track of an MP4 file.
type Report struct {
	Fragmented bool
	Codec      string // Sample entry fourcc, e.g. "jpeg", "avc1", "hvc1"
	Width      int
	Height     int
	Timescale  uint32
	Samples    []Sample
}

// PTS returns the presentation time of sample i, rounded to the nearest
// nanosecond.
func (r *Report) PTS(i int) time.Duration {
	return r.toDuration(r.Samples[i].DecodeTime)
}

// Duration returns the end time of the last sample.
func (r *Report) Duration() time.Duration {
	if len(r.Samples) == 0 {
		return 0
	}
	last := r.Samples[len(r.Samples)-1]
	return r.toDuration(last.DecodeTime + uint64(last.Dur))
}

func (r *Report) toDuration(units uint64) time.Duration {
	if r.Timescale == 0 {
		return 0
	}
	ts := uint64(r.Timescale)
	sec := units / ts
	rem := units % ts
	return time.Duration(sec)*time.Second + time.Duration((rem*uint64(time.Second)+ts/2)/ts)
}

// InspectFile opens path and inspects it.
func InspectFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Inspect(f)
}

// Inspect parses an MP4 from reader.
func Inspect(reader io.ReadSeeker) (*Report, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		return inspectFragmented(mp4File)
	}
	return inspectProgressive(mp4File)
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	if moov == nil {
		return nil
	}
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func describeTrack(trak *mp4.TrakBox, report *Report) {
	if trak.Mdia.Mdhd != nil {
		report.Timescale = trak.Mdia.Mdhd.Timescale
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		report.Codec = child.Type()
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			report.Width = int(vse.Width)
			report.Height = int(vse.Height)
		}
		break
	}
}

func inspectFragmented(mp4File *mp4.File) (*Report, error) {
	report := &Report{Fragmented: true}

	if mp4File.Init == nil {
		return nil, ErrNoVideoTrack
	}
	trak := videoTrack(mp4File.Init.Moov)
	if trak == nil {
		return nil, ErrNoVideoTrack
	}
	trackID := trak.Tkhd.TrackID
	describeTrack(trak, report)

	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			ours := false
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID == trackID {
					ours = true
				}
			}
			if !ours {
				continue
			}

			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return nil, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				report.Samples = append(report.Samples, Sample{
					DecodeTime: s.DecodeTime,
					Dur:        s.Dur,
					Size:       s.Size,
				})
			}
		}
	}

	return report, nil
}

func inspectProgressive(mp4File *mp4.File) (*Report, error) {
	report := &Report{}

	trak := videoTrack(mp4File.Moov)
	if trak == nil {
		return nil, ErrNoVideoTrack
	}
	describeTrack(trak, report)

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return nil, fmt.Errorf("no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil || stbl.Stts == nil {
		return nil, fmt.Errorf("missing stsz or stts box")
	}

	for nr := uint32(1); nr <= stbl.Stsz.SampleNumber; nr++ {
		decodeTime, dur := stbl.Stts.GetDecodeTime(nr)
		report.Samples = append(report.Samples, Sample{
			DecodeTime: decodeTime,
			Dur:        dur,
			Size:       stbl.Stsz.GetSampleSize(int(nr)),
		})
	}

	return report, nil
}

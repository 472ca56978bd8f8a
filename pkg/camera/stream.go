package camera

import (
	"fmt"
	"math"
)

type FrameSize struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

func (f FrameSize) String() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

type Format struct {
	PixelFormat uint32      `json:"pixel_format"` // FourCC
	Name        string      `json:"name,omitempty"`
	FrameSizes  []FrameSize `json:"frame_sizes"`
}

// Stream - video stream advertised to GCS. Formats are fixed after creation,
// only Selected changes on SET_VIDEO_STREAM_SETTINGS.
type Stream struct {
	ID          uint8    `json:"id"`
	Name        string   `json:"name"`
	IsStreaming bool     `json:"streaming"`
	Formats     []Format `json:"formats"`

	Selected *FrameSize `json:"selected,omitempty"`
}

// FindBestFrameSize returns exact match or the last frame size in declaration order
// that is not larger than w x h and not smaller than previous candidate.
// The result depends on formats order; this is how existing GCS clients see it.
func (s *Stream) FindBestFrameSize(w, h uint32) *FrameSize {
	var best *FrameSize

	for i := range s.Formats {
		sizes := s.Formats[i].FrameSizes
		for j := range sizes {
			fs := &sizes[j]
			if fs.Width == w && fs.Height == h {
				return fs
			}
			if best == nil || (fs.Width <= w && fs.Width >= best.Width && fs.Height <= h && fs.Height >= best.Height) {
				best = fs
			}
		}
	}

	return best
}

// ApplySettings selects frame size for requested resolution, zero in any
// dimension resets the stream to its native resolution
func (s *Stream) ApplySettings(w, h uint32) {
	if w == 0 || h == 0 {
		s.Selected = nil
	} else {
		s.Selected = s.FindBestFrameSize(w, h)
	}
}

// Resolved returns selected frame size or the best unbounded one
func (s *Stream) Resolved() *FrameSize {
	if s.Selected != nil {
		return s.Selected
	}
	return s.FindBestFrameSize(math.MaxUint32, math.MaxUint32)
}

package ffprobe

import (
	"context"
	"strings"
	"time"

	"github.com/Digital-Shane/media-renamer/internal/media"
	log "github.com/sirupsen/logrus"
	"gopkg.in/vansante/go-ffprobe.v2"
)

const defaultTimeout = 10 * time.Second

type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// Prober reads embedded container metadata with the ffprobe binary. It
// implements media.Prober and never fails: any probe error yields an
// empty result.
type Prober struct {
	probe   probeFunc
	timeout time.Duration
}

// New creates a prober using the ffprobe binary on PATH.
func New() *Prober {
	return &Prober{
		probe:   ffprobe.ProbeURL,
		timeout: defaultTimeout,
	}
}

// Probe returns the container title tags and primary stream details.
func (p *Prober) Probe(ctx context.Context, path string) media.ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, err := p.probe(ctx, path)
	if err != nil {
		log.WithFields(log.Fields{"path": path}).Debugf("ffprobe failed: %v", err)
		return media.ProbeResult{}
	}
	return buildResult(data)
}

func buildResult(data *ffprobe.ProbeData) media.ProbeResult {
	var result media.ProbeResult
	if data == nil {
		return result
	}

	if data.Format != nil {
		result.Title = tag(data.Format.TagList, "title")
		result.ShowTitle = tag(data.Format.TagList, "show")
	}

	if videoStream := data.FirstVideoStream(); videoStream != nil {
		result.VideoCodec = pickCodecName(videoStream)
		result.Resolution = resolutionLabel(videoStream.Height)
	}
	if audioStream := data.FirstAudioStream(); audioStream != nil {
		result.AudioCodec = pickCodecName(audioStream)
	}
	return result
}

// tag reads a format tag, accepting the upper-case keys Matroska files use.
func tag(tags ffprobe.Tags, key string) string {
	if tags == nil {
		return ""
	}
	for _, k := range []string{key, strings.ToUpper(key)} {
		if v, err := tags.GetString(k); err == nil && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func resolutionLabel(height int) string {
	switch {
	case height >= 2160:
		return "2160p"
	case height >= 1080:
		return "1080p"
	case height >= 720:
		return "720p"
	case height >= 576:
		return "576p"
	case height > 0:
		return "480p"
	default:
		return ""
	}
}

func pickCodecName(stream *ffprobe.Stream) string {
	if stream == nil {
		return ""
	}
	if stream.CodecName != "" {
		return stream.CodecName
	}
	return stream.CodecLongName
}

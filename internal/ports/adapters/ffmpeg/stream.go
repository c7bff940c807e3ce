package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"

	"github.com/forPelevin/subextract/internal/types"
)

// stream decodes frames as raw RGBA through an ffmpeg pipe. Only frames at
// index >= pos with index % stride == 0 leave the decoder.
type stream struct {
	bin    string
	info   types.VideoInfo
	stride int
	pos    int

	next   int
	cmd    *exec.Cmd
	out    io.ReadCloser
	rd     *bufio.Reader
	stderr *bytes.Buffer
	cancel context.CancelFunc
	eof    bool
	closed bool
}

func newStream(bin string, info types.VideoInfo) *stream {
	return &stream{bin: bin, info: info, stride: 1}
}

func (s *stream) Info() types.VideoInfo { return s.info }

func (s *stream) SetStride(n int) {
	if n < 1 {
		n = 1
	}
	if s.stride != n {
		s.stop()
		s.eof = false
	}
	s.stride = n
}

func (s *stream) Seek(_ context.Context, index int) error {
	if s.closed {
		return errors.New("ffmpeg: stream closed")
	}
	if index < 0 {
		index = 0
	}
	s.stop()
	s.pos = index
	s.eof = false
	return nil
}

func (s *stream) Next(ctx context.Context) (types.Frame, error) {
	if s.closed {
		return types.Frame{}, errors.New("ffmpeg: stream closed")
	}
	if err := ctx.Err(); err != nil {
		return types.Frame{}, err
	}
	if s.eof {
		return types.Frame{}, io.EOF
	}
	if s.cmd == nil {
		if err := s.start(); err != nil {
			return types.Frame{}, err
		}
	}

	w, h := s.info.Width, s.info.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if _, err := io.ReadFull(s.rd, img.Pix); err != nil {
		if errors.Is(err, io.EOF) {
			if werr := s.wait(); werr != nil {
				return types.Frame{}, werr
			}
			s.eof = true
			return types.Frame{}, io.EOF
		}
		werr := s.wait()
		if werr != nil {
			return types.Frame{}, werr
		}
		return types.Frame{}, fmt.Errorf("ffmpeg: truncated frame %d: %w", s.next, err)
	}

	f := types.Frame{Index: s.next, Image: img}
	s.next += s.stride
	s.pos = s.next
	return f, nil
}

func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.stop()
	s.closed = true
	return nil
}

func (s *stream) start() error {
	first := firstIndex(s.pos, s.stride)
	ctx, cancel := context.WithCancel(context.Background())

	args := []string{
		"-v", "error",
		"-nostdin",
		"-noautorotate",
		"-i", s.info.Path,
		"-map", "0:v:0",
		"-an", "-sn",
	}
	if filter := selectFilter(first, s.stride); filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-fps_mode", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, s.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	s.cmd = cmd
	s.out = out
	s.rd = bufio.NewReaderSize(out, s.info.Width*s.info.Height*4)
	s.stderr = &stderr
	s.cancel = cancel
	s.next = first
	return nil
}

func (s *stream) wait() error {
	if s.cmd == nil {
		return nil
	}
	err := s.cmd.Wait()
	stderr := s.stderr.String()
	s.cancel()
	s.cmd, s.out, s.rd, s.cancel = nil, nil, nil, nil
	if err != nil {
		return fmt.Errorf("ffmpeg decode: %w\n%s", err, stderr)
	}
	return nil
}

func (s *stream) stop() {
	if s.cmd == nil {
		return
	}
	s.cancel()
	_ = s.out.Close()
	_ = s.cmd.Wait()
	s.cmd, s.out, s.rd, s.cancel = nil, nil, nil, nil
}

// firstIndex returns the smallest multiple of stride that is >= pos.
func firstIndex(pos, stride int) int {
	if stride <= 1 {
		return pos
	}
	if r := pos % stride; r != 0 {
		return pos + stride - r
	}
	return pos
}

func selectFilter(first, stride int) string {
	var cond []string
	if first > 0 {
		cond = append(cond, "gte(n\\,"+strconv.Itoa(first)+")")
	}
	if stride > 1 {
		cond = append(cond, "not(mod(n\\,"+strconv.Itoa(stride)+"))")
	}
	switch len(cond) {
	case 0:
		return ""
	case 1:
		return "select=" + cond[0]
	default:
		return "select=" + cond[0] + "*" + cond[1]
	}
}

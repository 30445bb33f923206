package discord

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// maxFrameSize bounds one opus frame; anything larger means a corrupt file
const maxFrameSize = 4096

// LoadDCA reads every opus frame of a DCA file
func LoadDCA(path string) ([][]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sound file")
	}
	defer file.Close()

	return ReadDCA(file)
}

// ReadDCA reads length-prefixed opus frames until EOF
func ReadDCA(r io.Reader) ([][]byte, error) {
	var frames [][]byte
	for {
		var frameLen int16
		err := binary.Read(r, binary.LittleEndian, &frameLen)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read frame length")
		}
		if frameLen <= 0 || frameLen > maxFrameSize {
			return nil, errors.Errorf("invalid frame length %d", frameLen)
		}

		frame := make([]byte, frameLen)
		if _, err := io.ReadFull(r, frame); err != nil {
			return nil, errors.Wrap(err, "failed to read frame")
		}
		frames = append(frames, frame)
	}
}

package worker

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

var previewClient = &http.Client{Timeout: 15 * time.Second}

// AnalyzePreviewFunc allows tests to override the analyzer implementation.
var AnalyzePreviewFunc = analyzePreview

// analyzePreview downloads a catalog preview clip and derives a 0-1 energy
// proxy from its RMS amplitude.
func analyzePreview(url string) (float64, error) {
	// #nosec G107 -- URL comes from a trusted catalog API response
	resp, err := previewClient.Get(url)
	if err != nil {
		return 0, fmt.Errorf("preview fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("preview fetch status %d", resp.StatusCode)
	}

	return previewEnergy(resp.Body)
}

// previewEnergy decodes MP3 audio and normalizes the root-mean-square of its
// 16-bit samples into [0,1].
func previewEnergy(r io.Reader) (float64, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("preview decode failed: %w", err)
	}

	var sumSquares, samples float64
	buf := make([]byte, 8192)
	for {
		n, err := decoder.Read(buf)
		for i := 0; i+1 < n; i += 2 {
			v := float64(int16(buf[i]) | int16(buf[i+1])<<8)
			sumSquares += v * v
			samples++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("preview read failed: %w", err)
		}
	}
	if samples == 0 {
		return 0, fmt.Errorf("preview contains no samples")
	}

	energy := math.Sqrt(sumSquares/samples) / 32768.0
	if energy > 1 {
		energy = 1
	}
	return energy, nil
}

package tuner

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const (
	rtlRuntime = "rtl_sdr"
	rtlDevice  = "RTL-SDR"
)

// RTLConfig configures the `rtl_sdr` capture tool. The tool streams raw
// unsigned 8-bit IQ on stdout, which is exactly the format Source consumes.
type RTLConfig struct {
	// Required: capture sample rate in Hz. Only the two rates the
	// channelizers support are accepted.
	SampleRate int `yaml:"sampleRate"`

	DeviceIndex int     `yaml:"deviceIndex"` // -d device_index (default: 0)
	Gain        float64 `yaml:"gain"`        // -g tuner_gain in dB (default: automatic)
	PPMError    int     `yaml:"ppmError"`    // -p ppm_error (default: 0)
	BiasTee     bool    `yaml:"biasTee"`     // -T enable bias-tee (default: off)
}

func (c *RTLConfig) Validate() error {
	if c.SampleRate != 960000 && c.SampleRate != 2400000 {
		return fmt.Errorf("tuner: invalid RTL sample rate %d, must be 960000 or 2400000", c.SampleRate)
	}
	if c.DeviceIndex < 0 {
		return fmt.Errorf("tuner: invalid RTL device index %d", c.DeviceIndex)
	}
	if c.Gain < 0 {
		return fmt.Errorf("tuner: invalid RTL gain %.1f", c.Gain)
	}
	return nil
}

// Args returns the `rtl_sdr` command line for the given center frequency.
func (c *RTLConfig) Args(centerHz int64) []string {
	args := []string{
		"-f", strconv.FormatInt(centerHz, 10),
		"-s", strconv.Itoa(c.SampleRate),
		"-d", strconv.Itoa(c.DeviceIndex),
	}
	if c.Gain > 0 {
		args = append(args, "-g", strconv.FormatFloat(c.Gain, 'f', 1, 64))
	}
	if c.PPMError != 0 {
		args = append(args, "-p", strconv.Itoa(c.PPMError))
	}
	if c.BiasTee {
		args = append(args, "-T")
	}
	return append(args, "-") // dump to stdout
}

func (c *RTLConfig) String() string {
	return fmt.Sprintf("%s %s", rtlRuntime, strings.Join(c.Args(0), " "))
}

// rtlHandler builds rtl_sdr capture commands.
type rtlHandler struct {
	binPath string
	config  *RTLConfig
}

// NewRTL creates a Handler for an RTL-SDR frontend driven through the
// rtl_sdr binary.
func NewRTL(config *RTLConfig) (Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	binPath, err := exec.LookPath(rtlRuntime)
	if err != nil {
		return nil, fmt.Errorf("tuner: finding %s runtime: %w", rtlRuntime, err)
	}
	return &rtlHandler{binPath: binPath, config: config}, nil
}

func (h *rtlHandler) Cmd(ctx context.Context, centerHz int64) *exec.Cmd {
	return exec.CommandContext(ctx, h.binPath, h.config.Args(centerHz)...)
}

func (h *rtlHandler) Device() string { return rtlDevice }

// Package config holds the runtime configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Backend selects the face detector implementation
type Backend string

const (
	BackendPigo Backend = "pigo"
	BackendONNX Backend = "onnx"
)

// Config holds application configuration
type Config struct {
	CameraIndex   int `validate:"gte=0"`
	CaptureWidth  int `validate:"gt=0"`
	CaptureHeight int `validate:"gt=0"`
	TargetFPS     int `validate:"gt=0,lte=240"`

	// Zero means "same as the camera frame"
	ViewportWidth  int `validate:"gte=0"`
	ViewportHeight int `validate:"gte=0"`

	Backend         Backend `validate:"oneof=pigo onnx"`
	CascadePath     string  `validate:"required_if=Backend pigo"`
	SCRFDModelPath  string  `validate:"required_if=Backend onnx"`
	ONNXLibraryPath string  `validate:"required_if=Backend onnx"`
	DetectionSize   int     `validate:"gte=64"`
	ConfThreshold   float32 `validate:"gt=0,lt=1"`
	NMSThreshold    float32 `validate:"gt=0,lt=1"`
	Orientation     string  `validate:"oneof=portrait portrait-upside-down landscape-left landscape-right"`

	Preview bool

	MQTTBroker string
	MQTTTopic  string `validate:"required_with=MQTTBroker"`

	LogLevel string `validate:"oneof=trace debug info warn error"`
	LogFile  string
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		CameraIndex:     0,
		CaptureWidth:    1280,
		CaptureHeight:   720,
		TargetFPS:       30,
		Backend:         BackendPigo,
		CascadePath:     "cascade/facefinder",
		SCRFDModelPath:  "models/scrfd_10g.onnx",
		ONNXLibraryPath: "lib/libonnxruntime.dylib",
		DetectionSize:   640,
		ConfThreshold:   0.5,
		NMSThreshold:    0.4,
		Orientation:     "landscape-right",
		Preview:         true,
		MQTTTopic:       "facehighlight/overlay",
		LogLevel:        "info",
	}
}

// LoadEnv loads an optional .env file and applies FACEHL_* overrides
func (c *Config) LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	var errs []error
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setFloat := func(key string, dst *float32) {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = float32(f)
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setInt("FACEHL_CAMERA", &c.CameraIndex)
	setInt("FACEHL_CAPTURE_WIDTH", &c.CaptureWidth)
	setInt("FACEHL_CAPTURE_HEIGHT", &c.CaptureHeight)
	setInt("FACEHL_FPS", &c.TargetFPS)
	setInt("FACEHL_VIEWPORT_WIDTH", &c.ViewportWidth)
	setInt("FACEHL_VIEWPORT_HEIGHT", &c.ViewportHeight)
	if v, ok := os.LookupEnv("FACEHL_BACKEND"); ok {
		c.Backend = Backend(v)
	}
	setString("FACEHL_CASCADE", &c.CascadePath)
	setString("FACEHL_SCRFD_MODEL", &c.SCRFDModelPath)
	setString("FACEHL_ONNX_LIBRARY", &c.ONNXLibraryPath)
	setInt("FACEHL_DETECTION_SIZE", &c.DetectionSize)
	setFloat("FACEHL_CONF_THRESHOLD", &c.ConfThreshold)
	setFloat("FACEHL_NMS_THRESHOLD", &c.NMSThreshold)
	setString("FACEHL_ORIENTATION", &c.Orientation)
	setString("FACEHL_MQTT_BROKER", &c.MQTTBroker)
	setString("FACEHL_MQTT_TOPIC", &c.MQTTTopic)
	setString("FACEHL_LOG_LEVEL", &c.LogLevel)
	setString("FACEHL_LOG_FILE", &c.LogFile)

	return errors.Join(errs...)
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if (c.ViewportWidth == 0) != (c.ViewportHeight == 0) {
		return fmt.Errorf("invalid configuration: viewport width and height must be set together")
	}
	return nil
}

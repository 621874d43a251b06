package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dudu/facehighlight/internal/camera"
	"github.com/dudu/facehighlight/internal/config"
	"github.com/dudu/facehighlight/internal/geometry"
	"github.com/dudu/facehighlight/internal/logger"
	"github.com/dudu/facehighlight/internal/overlay"
	"github.com/dudu/facehighlight/internal/pipeline"
	"github.com/dudu/facehighlight/internal/ui"
)

func init() {
	// Lock the main goroutine to the main OS thread.
	// This is required on macOS for OpenCV's highgui (window creation).
	runtime.LockOSThread()
}

func main() {
	cfg := config.Default()
	if err := cfg.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	parseFlags(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Exiting")
		os.Exit(1)
	}
}

func parseFlags(cfg *config.Config) {
	backend := string(cfg.Backend)

	flag.IntVar(&cfg.CameraIndex, "camera", cfg.CameraIndex, "Camera device index")
	flag.IntVar(&cfg.CameraIndex, "c", cfg.CameraIndex, "Camera device index (shorthand)")
	flag.IntVar(&cfg.CaptureWidth, "width", cfg.CaptureWidth, "Requested capture width")
	flag.IntVar(&cfg.CaptureHeight, "height", cfg.CaptureHeight, "Requested capture height")
	flag.IntVar(&cfg.TargetFPS, "fps", cfg.TargetFPS, "Target frames per second")
	flag.IntVar(&cfg.ViewportWidth, "view-width", cfg.ViewportWidth, "Preview width (0 = camera width)")
	flag.IntVar(&cfg.ViewportHeight, "view-height", cfg.ViewportHeight, "Preview height (0 = camera height)")
	flag.StringVar(&backend, "backend", backend, "Face detector: pigo or onnx")
	flag.StringVar(&backend, "b", backend, "Face detector (shorthand)")
	flag.StringVar(&cfg.CascadePath, "cascade", cfg.CascadePath, "Pigo facefinder cascade file")
	flag.StringVar(&cfg.SCRFDModelPath, "model", cfg.SCRFDModelPath, "SCRFD ONNX model")
	flag.StringVar(&cfg.ONNXLibraryPath, "onnx-lib", cfg.ONNXLibraryPath, "ONNX Runtime shared library")
	flag.StringVar(&cfg.Orientation, "orientation", cfg.Orientation,
		"Device orientation: portrait, portrait-upside-down, landscape-left, landscape-right")
	flag.BoolVar(&cfg.Preview, "preview", cfg.Preview, "Show preview window")
	flag.BoolVar(&cfg.Preview, "p", cfg.Preview, "Show preview window (shorthand)")
	flag.StringVar(&cfg.MQTTBroker, "mqtt", cfg.MQTTBroker, "Publish highlight events to this MQTT broker")
	flag.StringVar(&cfg.MQTTTopic, "mqtt-topic", cfg.MQTTTopic, "MQTT topic prefix")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write logs to this file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "facehighlight - live face highlight over a mirrored camera preview\n\n")
		fmt.Fprintf(os.Stderr, "Usage: facehighlight [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  facehighlight --cascade cascade/facefinder\n")
		fmt.Fprintf(os.Stderr, "  facehighlight --backend onnx --model models/scrfd_10g.onnx\n")
		fmt.Fprintf(os.Stderr, "  facehighlight --view-width 375 --view-height 667 --mqtt tcp://localhost:1883\n")
	}

	flag.Parse()
	cfg.Backend = config.Backend(backend)
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("camera", cfg.CameraIndex).Info("Opening camera")
	cam, err := camera.NewCapture(cfg.CameraIndex, cfg.TargetFPS, cfg.CaptureWidth, cfg.CaptureHeight)
	if err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	defer cam.Close()

	viewport := geometry.Size{Width: float64(cfg.ViewportWidth), Height: float64(cfg.ViewportHeight)}
	if !viewport.Valid() {
		viewport = geometry.Size{Width: float64(cam.Width()), Height: float64(cam.Height())}
	}
	log.WithFields(logrus.Fields{
		"frame":    fmt.Sprintf("%dx%d", cam.Width(), cam.Height()),
		"viewport": viewport.String(),
	}).Info("Camera opened")

	var renderers overlay.Multi
	var highlight *ui.Highlight
	if cfg.Preview {
		highlight = ui.NewHighlight(ui.DefaultStyle())
		renderers = append(renderers, highlight)
	} else {
		renderers = append(renderers, overlay.Logged{Log: log})
	}
	if cfg.MQTTBroker != "" {
		pub, err := overlay.NewPublisher(cfg.MQTTBroker, cfg.MQTTTopic, log)
		if err != nil {
			return err
		}
		defer pub.Close()
		log.WithFields(logrus.Fields{
			"broker":  cfg.MQTTBroker,
			"session": pub.Session(),
		}).Info("Publishing highlight events")
		renderers = append(renderers, pub)
	}

	p, err := pipeline.New(cfg, renderers, log)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	// Frames are processed off the UI thread; the newest processed frame is
	// handed to the preview loop.
	display := make(chan camera.Frame, 1)
	go func() {
		defer close(display)
		for frame := range cam.Stream(ctx, log) {
			if err := p.Process(frame, viewport); err != nil {
				log.WithError(err).Warn("Frame skipped")
			}
			if highlight == nil {
				frame.Close()
				continue
			}
			select {
			case display <- frame:
			default:
				frame.Close()
			}
		}
	}()
	defer func() {
		stop()
		for frame := range display {
			frame.Close()
		}
	}()

	log.Info("Running... press 'q' to quit")

	if highlight == nil {
		for range display {
		}
		log.Info("Shutting down")
		return nil
	}

	window := ui.NewWindow("facehighlight", int(viewport.Width), int(viewport.Height))
	defer window.Close()

	for {
		select {
		case <-ctx.Done():
			log.WithField("fps", window.FPS()).Info("Shutting down")
			return nil
		case frame, ok := <-display:
			if !ok {
				return nil
			}
			canvas, err := ui.Compose(frame.Mat, viewport)
			if err != nil {
				log.WithError(err).WithField("frame", frame.Index).Warn("Preview blanked")
			}
			frame.Close()
			if err := highlight.Draw(&canvas, time.Now()); err != nil {
				log.WithError(err).Warn("Highlight not drawn")
			}
			window.Show(&canvas)
			canvas.Close()
		default:
		}

		// WaitKey must be called to process window events on macOS
		key := window.WaitKey(10)
		if key == 'q' || key == 27 { // 'q' or ESC
			log.WithField("fps", window.FPS()).Info("Quitting")
			return nil
		}
	}
}

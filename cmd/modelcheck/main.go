package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/tsawler/go-metal/checkpoints"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/facehighlight/internal/logger"
)

func main() {
	runtimeName := flag.String("runtime", "ort", "Loader to check the model with: ort or metal")
	library := flag.String("onnx-lib", "lib/libonnxruntime.dylib", "ONNX Runtime shared library")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: modelcheck [options] <model.onnx>\n\n")
		fmt.Fprintf(os.Stderr, "Checks that a face detection model can be loaded before running facehighlight.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	modelPath := flag.Arg(0)

	log, err := logger.New("info", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(modelPath); err != nil {
		log.WithError(err).Fatal("Model not found")
	}

	switch *runtimeName {
	case "ort":
		err = checkONNXRuntime(modelPath, *library, log)
	case "metal":
		err = checkMetal(modelPath, log)
	default:
		err = fmt.Errorf("unknown runtime %q", *runtimeName)
	}
	if err != nil {
		log.WithError(err).Fatal("Model check failed")
	}
}

func checkONNXRuntime(modelPath, library string, log *logrus.Logger) error {
	ort.SetSharedLibraryPath(library)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}
	defer ort.DestroyEnvironment()

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return fmt.Errorf("failed to read model info: %w", err)
	}

	log.WithField("model", modelPath).Info("Model loaded")
	for _, info := range inputs {
		log.WithFields(logrus.Fields{"name": info.Name, "shape": info.Dimensions, "type": info.DataType}).Info("Input")
	}
	for _, info := range outputs {
		log.WithFields(logrus.Fields{"name": info.Name, "shape": info.Dimensions, "type": info.DataType}).Info("Output")
	}

	metadata, err := ort.GetModelMetadata(modelPath)
	if err != nil {
		log.WithError(err).Warn("Could not read metadata")
		return nil
	}
	defer metadata.Destroy()
	if producer, err := metadata.GetProducerName(); err == nil {
		log.WithField("producer", producer).Info("Metadata")
	}
	if version, err := metadata.GetVersion(); err == nil {
		log.WithField("version", version).Info("Metadata")
	}
	return nil
}

func checkMetal(modelPath string, log *logrus.Logger) error {
	importer := checkpoints.NewONNXImporter()
	checkpoint, err := importer.ImportFromONNX(modelPath)
	if err != nil {
		return fmt.Errorf("go-metal cannot import %s: %w", modelPath, err)
	}

	log.WithFields(logrus.Fields{
		"layers":  len(checkpoint.ModelSpec.Layers),
		"weights": len(checkpoint.Weights),
	}).Info("Model imported")
	for i, layer := range checkpoint.ModelSpec.Layers {
		log.WithFields(logrus.Fields{"index": i + 1, "name": layer.Name, "type": layer.Type}).Debug("Layer")
	}
	return nil
}

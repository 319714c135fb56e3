package cmd

const (
	// DefaultLogFile is the logfile to use if one is not provided.
	DefaultLogFile = "testpiper.log"
	// DefaultLogLevel is the logging verbosity to use if one is not provided.
	DefaultLogLevel = "info"
	// DefaultImage is the unqualified image name to build and publish.
	DefaultImage = "piper-tts"
	// DefaultDockerfile is the Dockerfile handed to the image build.
	DefaultDockerfile = "Dockerfile"
	// DefaultBuildContext is the build context handed to the image build.
	DefaultBuildContext = "."
	// DefaultListenAddr is the address the HTTP server binds to.
	DefaultListenAddr = ":8000"
	// DefaultModelPath is the voice model served when none is configured.
	DefaultModelPath = "models/ml_IN-arjun-medium.onnx"
	// DefaultPiperBin is the piper executable used for synthesis.
	DefaultPiperBin = "piper"
)

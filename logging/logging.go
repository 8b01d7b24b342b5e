package logging

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tarmac-project/fetchmock"
	wapc "github.com/wapc/wapc-guest-tinygo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const capabilityName = "logging"

// ErrInvalidLevel is returned when a level name is not recognized.
var ErrInvalidLevel = errors.New("invalid log level")

// Client exposes the leveled trace lines emitted by fetchmock components.
type Client interface {
	Info(message string)
	Warn(message string)
	Error(message string)
	Debug(message string)
	Trace(message string)
}

// Config controls how a host-backed Client interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig fetchmock.RuntimeConfig

	// HostCall overrides the waPC host function used for logging operations.
	HostCall fetchmock.HostCall
}

// hostClient implements Client using the configured host call entrypoint.
type hostClient struct {
	runtime  fetchmock.RuntimeConfig
	hostCall fetchmock.HostCall
}

// New creates a Client that emits logs through the host's logging capability.
func New(cfg Config) (Client, error) {
	hostCall := cfg.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &hostClient{
		runtime:  cfg.SDKConfig.WithDefaults(),
		hostCall: hostCall,
	}, nil
}

func (c *hostClient) Info(message string)  { c.log("Info", message) }
func (c *hostClient) Warn(message string)  { c.log("Warn", message) }
func (c *hostClient) Error(message string) { c.log("Error", message) }
func (c *hostClient) Debug(message string) { c.log("Debug", message) }
func (c *hostClient) Trace(message string) { c.log("Trace", message) }

func (c *hostClient) log(fn string, message string) {
	_, _ = c.hostCall(c.runtime.Namespace, capabilityName, fn, []byte(message))
}

// zapClient implements Client on top of a zap logger. zap has no trace
// level, so Trace lines are written at debug.
type zapClient struct {
	logger *zap.Logger
}

// NewZap wraps l as a Client. A nil logger discards everything.
func NewZap(l *zap.Logger) Client {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapClient{logger: l}
}

// Nop returns a Client that discards every line.
func Nop() Client { return NewZap(zap.NewNop()) }

// NewConsole builds a console-encoded zap Client writing to stderr at the
// named level (trace, debug, info, warn, error; case-insensitive).
func NewConsole(level string) (Client, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      false,
		Encoding:         "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			TimeKey:        "ts",
			NameKey:        "logger",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeName:     zapcore.FullNameEncoder,
		},
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return NewZap(l.Named("fetchmock")), nil
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(level) {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel, nil
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}
}

func (c *zapClient) Info(message string)  { c.logger.Info(message) }
func (c *zapClient) Warn(message string)  { c.logger.Warn(message) }
func (c *zapClient) Error(message string) { c.logger.Error(message) }
func (c *zapClient) Debug(message string) { c.logger.Debug(message) }
func (c *zapClient) Trace(message string) { c.logger.Debug(message) }

// Package log configures the process-wide zap logger used by jsonedit.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mcncl/jsonedit/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu        sync.RWMutex
	zaplogger *zap.Logger
)

var levelMap = map[string]zapcore.Level{
	"DEBUG": zapcore.DebugLevel,
	"INFO":  zapcore.InfoLevel,
	"WARN":  zapcore.WarnLevel,
	"ERROR": zapcore.ErrorLevel,
	"FATAL": zapcore.FatalLevel,
}

type modeEncoder func() zapcore.Encoder

var modeMap = map[string]modeEncoder{
	"SIMPLE": simpleEncoder,
	"FULL":   fullEncoder,
}

// SinkType selects where log lines are written.
type SinkType int

const (
	SinkConsole SinkType = iota // default
	SinkFile
	SinkMulti
)

var sinkMap = map[string]SinkType{
	"":        SinkConsole,
	"CONSOLE": SinkConsole,
	"FILE":    SinkFile,
	"MULTI":   SinkMulti,
}

func init() {
	cfg := config.NewConfig().Log
	if err := Init(cfg); err != nil {
		panic(err)
	}
}

// GetSinkType maps a sink name onto a SinkType.
func GetSinkType(sink string) (SinkType, error) {
	sinkType, ok := sinkMap[strings.ToUpper(sink)]
	if !ok {
		return SinkConsole, fmt.Errorf("illegal sink: %s", sink)
	}
	return sinkType, nil
}

// Init replaces the process logger according to cfg.
func Init(cfg config.LogConfig) error {
	sinkType, err := GetSinkType(cfg.Sink)
	if err != nil {
		return err
	}
	encoder, level, err := encoderAndLevel(cfg.Mode, cfg.Level)
	if err != nil {
		return err
	}

	var ws zapcore.WriteSyncer
	switch sinkType {
	case SinkFile:
		ws, err = fileWriter(cfg.Filename)
	case SinkMulti:
		var fw zapcore.WriteSyncer
		fw, err = fileWriter(cfg.Filename)
		ws = zapcore.NewMultiWriteSyncer(consoleWriter(), fw)
	default:
		ws = consoleWriter()
	}
	if err != nil {
		return err
	}

	core := zapcore.NewCore(encoder(), ws, level)
	Replace(zap.New(core, zap.AddCaller()))
	return nil
}

// Replace swaps the process logger. Tests use it to install an observer.
func Replace(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	zaplogger = logger
}

// L returns the process logger as a sugared logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return zaplogger.Sugar()
}

// Named returns a sugared logger scoped to one component.
func Named(name string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return zaplogger.Named(name).Sugar()
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return zaplogger.Sync()
}

func encoderAndLevel(mode, level string) (modeEncoder, zapcore.Level, error) {
	if mode == "" {
		mode = "SIMPLE"
	}
	if level == "" {
		level = "WARN"
	}
	encoder, ok := modeMap[strings.ToUpper(mode)]
	if !ok {
		return nil, zapcore.DebugLevel, fmt.Errorf("illegal log mode: %s", mode)
	}
	zapLevel, ok := levelMap[strings.ToUpper(level)]
	if !ok {
		return nil, zapcore.DebugLevel, fmt.Errorf("illegal log level: %s", level)
	}
	return encoder, zapLevel, nil
}

// consoleWriter writes to stderr; stdout carries documents.
func consoleWriter() zapcore.WriteSyncer {
	return zapcore.Lock(zapcore.AddSync(os.Stderr))
}

func fileWriter(filename string) (zapcore.WriteSyncer, error) {
	if filename == "" {
		return nil, fmt.Errorf("log filename is required for file sinks")
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxAge:     30, // days
		MaxBackups: 7,
		LocalTime:  true,
	}), nil
}

func simpleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.CallerKey = ""
	encoderConfig.FunctionKey = ""
	encoderConfig.EncodeTime = nil
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.ConsoleSeparator = "|"
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func fullEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.FunctionKey = "func"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.ConsoleSeparator = "|"
	return zapcore.NewConsoleEncoder(encoderConfig)
}

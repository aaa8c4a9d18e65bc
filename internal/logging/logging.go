// Package logging builds the application's zap logger.
package logging

import (
	"bytes"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure the logger
type Options struct {
	Level string // debug, info, warn or error
	File  string // rotated JSON log file, empty disables

	// Console receives human-readable output; nil disables it
	Console io.Writer
}

// New returns a logger writing JSON to a rotated file and console output
// to opts.Console. Unknown levels fall back to info.
func New(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	var cores []zapcore.Core

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(rotator), level))
	}

	if opts.Console != nil {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !isTerminal(opts.Console) {
			enc.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		// only warnings and above reach the terminal unless debugging
		consoleLevel := zapcore.WarnLevel
		if level == zapcore.DebugLevel || level > consoleLevel {
			consoleLevel = level
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(opts.Console), consoleLevel))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	return zap.New(zapcore.NewTee(cores...))
}

func isTerminal(w io.Writer) bool {
	if s, ok := w.(*Switch); ok {
		w = s.out
	}
	return w == os.Stderr || w == os.Stdout
}

// Switch is a console writer that can be held back while another
// component owns the terminal. Output written while held is replayed on
// Release.
type Switch struct {
	mu   sync.Mutex
	out  io.Writer
	held *bytes.Buffer
}

// NewSwitch returns a Switch passing writes through to out
func NewSwitch(out io.Writer) *Switch {
	return &Switch{out: out}
}

func (s *Switch) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held != nil {
		return s.held.Write(p)
	}
	return s.out.Write(p)
}

// Sync implements zapcore.WriteSyncer
func (s *Switch) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.out.(zapcore.WriteSyncer); ok && s.held == nil {
		return ws.Sync()
	}
	return nil
}

// Hold buffers console output until Release
func (s *Switch) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		s.held = &bytes.Buffer{}
	}
}

// Release writes any held output and resumes passing writes through
func (s *Switch) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held == nil {
		return nil
	}
	held := s.held
	s.held = nil
	_, err := held.WriteTo(s.out)
	return err
}

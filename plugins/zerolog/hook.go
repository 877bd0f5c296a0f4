// Package zerolog implements reactor.Hooks on top of github.com/rs/zerolog,
// for callers who want to observe node creation, naming, reads, updates,
// and panics as structured log lines instead of writing their own Hooks.
package zerolog

import (
	"github.com/coregx/reactor"
	"github.com/rs/zerolog"
)

// Sink is a reactor.Hooks implementation that writes one structured log
// event per hook invocation.
//
// Example:
//
//	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
//	reactor.InstallHooks(reactorzerolog.NewSink(logger))
type Sink struct {
	log zerolog.Logger

	// LogReads, when false (the default), suppresses OnRead events; a
	// busy graph calls OnRead far more often than the other hooks and
	// most callers only want creation/update/panic visibility.
	LogReads bool
}

// NewSink wraps logger as a reactor.Hooks sink.
func NewSink(logger zerolog.Logger) *Sink {
	return &Sink{log: logger}
}

func (s *Sink) OnCreated(info reactor.NodeInfo) {
	s.log.Debug().Str("kind", info.Kind).Str("name", info.Name).Msg("reactor: node created")
}

func (s *Sink) OnNamed(info reactor.NodeInfo) {
	s.log.Debug().Str("kind", info.Kind).Str("name", info.Name).Msg("reactor: node named")
}

func (s *Sink) OnRead(info reactor.NodeInfo) {
	if !s.LogReads {
		return
	}
	s.log.Trace().Str("kind", info.Kind).Str("name", info.Name).Msg("reactor: node read")
}

func (s *Sink) OnUpdated(info reactor.NodeInfo) {
	s.log.Info().Str("kind", info.Kind).Str("name", info.Name).Msg("reactor: node updated")
}

func (s *Sink) OnPanic(info reactor.NodeInfo, err any, stack []byte) {
	s.log.Error().
		Str("kind", info.Kind).
		Str("name", info.Name).
		Interface("panic", err).
		Bytes("stack", stack).
		Msg("reactor: node panic")
}

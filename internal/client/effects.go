package client

import "go.uber.org/zap"

// Effects es el contrato con el subsistema de audio/animación. Prime debe
// llamarse dentro de un gesto de usuario (los navegadores bloquean el
// autoplay fuera de uno); PlaySuccess dispara el festejo del canje.
type Effects interface {
	Prime()
	PlaySuccess()
}

type nopEffects struct{}

func NewNopEffects() Effects { return nopEffects{} }

func (nopEffects) Prime()       {}
func (nopEffects) PlaySuccess() {}

type logEffects struct {
	logger *zap.Logger
}

// NewLogEffects registra los disparos de efectos, útil en el host CLI.
func NewLogEffects(logger *zap.Logger) Effects {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logEffects{logger: logger}
}

func (e *logEffects) Prime() {
	e.logger.Info("audio primed")
}

func (e *logEffects) PlaySuccess() {
	e.logger.Info("success effect played")
}

// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package logger

import (
	"github.com/Fantom-foundation/Courier/go/courier"
	"go.uber.org/zap"
)

// NewDiagnosticSink creates a sink writing unit diagnostics at the debug
// level of the given logger. Every entry carries the emitting unit and the
// call depth of the emitting invocation. If the logger is nil, the global
// logger at the time of emission is used.
func NewDiagnosticSink(l *zap.SugaredLogger) courier.DiagnosticSink {
	return &diagnosticSink{logger: l}
}

type diagnosticSink struct {
	logger *zap.SugaredLogger
}

func (s *diagnosticSink) Emit(diagnostic courier.Diagnostic) {
	l := s.logger
	if l == nil {
		l = Logger()
	}
	fields := make([]any, 0, len(diagnostic.Fields)+4)
	fields = append(fields, "unit", diagnostic.Unit, "depth", diagnostic.Depth)
	fields = append(fields, diagnostic.Fields...)
	l.Debugw(diagnostic.Message, fields...)
}

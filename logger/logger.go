// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package logger

import (
	"fmt"
	"sync/atomic"
)

var _ LoggerInterface = (*Logger)(nil)

// Logger queues log lines on Prints. The GUI event loop drains the channel
// into the log page. When nobody drains it, lines beyond the buffer are
// dropped and counted instead of blocking the caller.
type Logger struct {
	Prints chan string

	dropped atomic.Uint64
}

func Init() *Logger {
	return &Logger{Prints: make(chan string, 100)}
}

func (l *Logger) Print(s string) {
	select {
	case l.Prints <- s:
	default:
		l.dropped.Add(1)
	}
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.Print(fmt.Sprintf(s, as...))
}

func (l *Logger) PrintError(source string, err error) {
	l.Printf("Error(%s) -> %s", source, err.Error())
}

// Dropped reports how many lines were discarded because the buffer was full.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

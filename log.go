// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cff

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLoggerOnce sync.Once
	defaultLogger     *zap.SugaredLogger
)

// DefaultLogger returns the logger used when Options.Logger is not set.
// It is built exactly once per process, writes to stderr, and keeps only
// errors; pass a custom logger through Options to see scan diagnostics.
func DefaultLogger() *zap.SugaredLogger {
	defaultLoggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		logger, err := cfg.Build()
		if err != nil {
			logger = zap.NewNop()
		}
		defaultLogger = logger.Sugar()
	})
	return defaultLogger
}

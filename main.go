package main

import (
	"github.com/wwantools/modemstress/cmd"
	"github.com/wwantools/modemstress/pkg/logger"
	"github.com/wwantools/modemstress/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()
	log := logger.L()
	if log == nil {
		panic("logger.L() returned nil; logger not initialized")
	}

	if err := telemetry.Init("modemstress"); err != nil {
		log.Warn("telemetry disabled: " + err.Error())
	}

	cmd.Execute()
}

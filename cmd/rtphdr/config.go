/*
DESCRIPTION
  config.go provides the configuration for rtphdr and its validation.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package main

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/ausocean/utils/logging"
)

// Config map keys.
const (
	KeyInputPath = "InputPath"
	KeyLogging   = "logging"
	KeyRTCP      = "RTCP"
)

// Default config values.
const (
	defaultVerbosity = logging.Info
)

var errNoInputPath = errors.New("no input path")

// Config holds the settings for a decode run.
type Config struct {
	// Logger holds an implementation of the Logger interface as defined in the
	// ausocean/utils/logging package. It must be set before Update or Validate
	// are called.
	Logger logging.Logger

	InputPath string // Path of the rtpdump file to decode.
	LogLevel  int8   // Verbosity of the logger, one of the logging package levels.
	ShowRTCP  bool   // Report RTCP records, which are otherwise skipped silently.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errNoInputPath
	}

	switch c.LogLevel {
	case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
	default:
		c.LogInvalidField("LogLevel", defaultVerbosity)
		c.LogLevel = defaultVerbosity
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and sets the config struct fields as
// appropriate. Unknown keys are ignored.
func (c *Config) Update(vars map[string]string) {
	for k, v := range vars {
		switch k {
		case KeyInputPath:
			c.InputPath = v
		case KeyLogging:
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid logging param", "value", v)
			}
		case KeyRTCP:
			b, err := strconv.ParseBool(v)
			if err != nil {
				c.Logger.Warning("invalid RTCP param", "value", v)
				continue
			}
			c.ShowRTCP = b
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}

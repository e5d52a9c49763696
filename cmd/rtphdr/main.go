/*
DESCRIPTION
  rtphdr decodes and prints the RTP header of every packet held in an rtpdump
  capture file, and reports a summary of decode outcomes.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package rtphdr is a program that decodes the RTP headers of an rtpdump file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"
)

// Logging configuration.
const (
	logPath      = "/var/log/rtphdr/rtphdr.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = true
)

func main() {
	pathPtr := flag.String("path", "", "Path to rtpdump file to decode.")
	logPtr := flag.String("log", logPath, "Path of the log file.")
	verbosityPtr := flag.String("verbosity", "Info", "Log verbosity: Debug, Info, Warning, Error or Fatal.")
	rtcpPtr := flag.Bool("rtcp", false, "Report RTCP records as well as RTP headers.")
	flag.Parse()

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logPtr,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()

	// Create logger that we call methods on to log, writing to file and stderr.
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	cfg := Config{Logger: log}
	cfg.Update(map[string]string{
		KeyInputPath: *pathPtr,
		KeyLogging:   *verbosityPtr,
		KeyRTCP:      strconv.FormatBool(*rtcpPtr),
	})
	err := cfg.Validate()
	if err != nil {
		log.Fatal("invalid config", "error", err)
	}
	log.SetLevel(cfg.LogLevel)

	f, err := os.Open(cfg.InputPath)
	if err != nil {
		log.Fatal("could not open input file", "path", cfg.InputPath, "error", err)
	}
	defer f.Close()

	s, err := run(cfg, f, os.Stdout)
	if err != nil {
		log.Error("decode stopped early", "error", err)
	}
	log.Info("decode complete", "records", s.Records, "decoded", s.Decoded, "failed", s.failed())
	fmt.Println(s)
}

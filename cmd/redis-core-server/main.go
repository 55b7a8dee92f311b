// Command redis-core-server runs a RESP2-speaking in-memory key-value
// server: a fixed-size fleet of databases addressed by SELECT, dispatched
// through internal/command and served over internal/server's gnet wiring.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kvresp/rediscore/internal/command"
	"github.com/kvresp/rediscore/internal/server"
)

func main() {
	var (
		network   string
		addr      string
		databases int
		multicore bool
		reusePort bool
		logFile   string
		debug     bool
	)

	flag.StringVar(&network, "network", "tcp", "server network")
	flag.StringVar(&addr, "addr", "127.0.0.1:7379", "server address")
	flag.IntVar(&databases, "databases", 16, "number of SELECT-able databases")
	flag.BoolVar(&multicore, "multicore", false, "enable multicore support")
	flag.BoolVar(&reusePort, "reusePort", false, "enable SO_REUSEPORT")
	flag.StringVar(&logFile, "logfile", "", "rotate logs to this file instead of stderr")
	flag.BoolVar(&debug, "debug", false, "enable debug-level logging")
	flag.Parse()

	logger, err := buildLogger(logFile, debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctrl := command.New(databases)
	srv := server.New(ctrl, logger)

	protoAddr := fmt.Sprintf("%s://%s", network, addr)
	logger.Info("starting redis-core-server",
		zap.String("addr", protoAddr),
		zap.Int("databases", databases),
		zap.Bool("multicore", multicore),
	)

	opts := server.Options{
		Multicore: multicore,
		ReusePort: reusePort,
	}
	if err := server.ListenAndServe(protoAddr, opts, srv); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildLogger constructs a zap.Logger writing to stderr, or to a
// lumberjack-rotated file when logFile is set.
func buildLogger(logFile string, debug bool) (*zap.Logger, error) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var sink zapcore.WriteSyncer
	if logFile != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	} else {
		sink = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller()), nil
}

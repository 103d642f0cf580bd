package logger

import "go.uber.org/zap"

var Log = newDefaultLogger()

func SetLogger(logger *zap.SugaredLogger) {
	Log = logger
}

func newDefaultLogger() *zap.SugaredLogger {
	logger, e := zap.NewDevelopment()
	if e != nil {
		panic(e)
	}
	return logger.Sugar()
}

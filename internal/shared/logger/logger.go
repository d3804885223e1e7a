package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New cria o logger do serviço. Se logFile vier preenchido, os logs também
// são gravados em JSON num arquivo rotacionado.
func New(serviceName, env, logFile string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	}

	// sempre garantir que serviço e env entrem como campos padrão
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var opts []zap.Option
	if logFile != "" {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(cfg.EncoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    100, // MB
				MaxBackups: 5,
				MaxAge:     14, // dias
				Compress:   true,
			}),
			cfg.Level,
		)
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}
	// Fields depois do tee para que o arquivo também receba service/env
	opts = append(opts, zap.Fields(
		zap.String("service", serviceName),
		zap.String("env", env),
	))

	l, err := cfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	return l, nil
}

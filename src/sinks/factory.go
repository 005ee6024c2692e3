package sinks

import (
	"market-breadth/src/interfaces"
	"market-breadth/src/logger"
	"market-breadth/src/models"
)

// FromConfig builds every enabled sink.
func FromConfig(cfg models.MSinksConfig, log *logger.Logger) []interfaces.ISnapshotSink {
	var out []interfaces.ISnapshotSink
	if cfg.Redis.Enabled {
		out = append(out, NewRedisSink(cfg.Redis, log.Named("redis")))
		log.Info("Redis sink enabled (%s, channel %s)", cfg.Redis.Addr, cfg.Redis.Channel)
	}
	if cfg.Kafka.Enabled {
		out = append(out, NewKafkaSink(cfg.Kafka, log.Named("kafka")))
		log.Info("Kafka sink enabled (topic %s)", cfg.Kafka.Topic)
	}
	return out
}

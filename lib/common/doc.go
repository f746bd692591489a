// Package common provides the configuration, logging and metrics plumbing
// shared by the fsSync library packages and the command line interface.
//
// Logging is built on the dragonboat logger package: every package obtains a
// named logger via logger.GetLogger and InitLoggers installs the fsSync
// formatter and sets the level for all known loggers. Metrics are registered
// in the default VictoriaMetrics set and can be dumped in Prometheus text
// format with WriteMetrics.
package common
